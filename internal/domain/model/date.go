package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the textual calendar-date form written to documents.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses a calendar date. Besides YYYY-MM-DD it accepts RFC 3339
// timestamps, which keep the calendar date of their own offset. "Z" and
// "+00:00" are the same offset.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing date", ErrUserInput)
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return Day(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrUserInput, s)
}

// Day drops the clock part of t and returns UTC midnight of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// YearStart returns the first instant of year.
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}
