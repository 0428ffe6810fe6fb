package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Default viewport of a new timeline.
const (
	DefaultZoom      = 1.0
	DefaultStartYear = 2000
	DefaultEndYear   = 2020
)

// Viewport bounds. Years stay within four digits so dates round-trip through
// DateLayout; DefaultMaxYearSpan caps the years drawn per render.
const (
	MinYear            = -9999
	MaxYear            = 9999
	MaxZoom            = 1000.0
	DefaultMaxYearSpan = 1000
)

// Padding is the blank margin around the drawn timeline, in pixels.
type Padding struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DefaultPadding returns the margins of a new timeline.
func DefaultPadding() Padding {
	return Padding{Top: 100, Right: 0, Bottom: 50, Left: 50}
}

// Timeline is the aggregate root: viewport settings plus the items it owns.
// Events are re-sorted by date before every draw and export; Timespans keep
// their creation or import order.
type Timeline struct {
	Title     string
	Padding   Padding
	Zoom      float64
	StartYear int
	EndYear   int
	Events    []PointEvent
	Timespans []DurationSpan
}

// New returns an empty timeline with the default viewport.
func New() *Timeline {
	return &Timeline{
		Padding:   DefaultPadding(),
		Zoom:      DefaultZoom,
		StartYear: DefaultStartYear,
		EndYear:   DefaultEndYear,
		Events:    []PointEvent{},
		Timespans: []DurationSpan{},
	}
}

// ValidateViewport reports ErrDegenerateConfig for a zoom outside (0, MaxZoom],
// a year outside [MinYear, MaxYear] or an end year before the start year.
func ValidateViewport(zoom float64, startYear, endYear int) error {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) || zoom <= 0 || zoom > MaxZoom {
		return fmt.Errorf("%w: zoom must be in (0, %v], got %v", ErrDegenerateConfig, MaxZoom, zoom)
	}
	for _, y := range []int{startYear, endYear} {
		if y < MinYear || y > MaxYear {
			return fmt.Errorf("%w: year %d outside [%d, %d]", ErrDegenerateConfig, y, MinYear, MaxYear)
		}
	}
	if endYear < startYear {
		return fmt.Errorf("%w: end year %d before start year %d", ErrDegenerateConfig, endYear, startYear)
	}
	return nil
}

// CheckYearSpan reports ErrDegenerateConfig when the range covers more than
// maxSpan years. A maxSpan <= 0 disables the check.
func CheckYearSpan(startYear, endYear, maxSpan int) error {
	if maxSpan > 0 && endYear-startYear > maxSpan {
		return fmt.Errorf("%w: year range %d..%d spans more than %d years", ErrDegenerateConfig, startYear, endYear, maxSpan)
	}
	return nil
}

// Validate checks the timeline's own viewport.
func (t *Timeline) Validate() error {
	return ValidateViewport(t.Zoom, t.StartYear, t.EndYear)
}

// SetViewport updates zoom and year range. A degenerate viewport is rejected
// and leaves the timeline unchanged.
func (t *Timeline) SetViewport(zoom float64, startYear, endYear int) error {
	if err := ValidateViewport(zoom, startYear, endYear); err != nil {
		return err
	}
	t.Zoom = zoom
	t.StartYear = startYear
	t.EndYear = endYear
	return nil
}

// Origin is the date drawn at pixel offset 0: Jan 1 of the start year.
func (t *Timeline) Origin() time.Time {
	return YearStart(t.StartYear)
}

// NewPointEvent builds an event from raw user input.
func NewPointEvent(id, date, title, description, color string) (PointEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return PointEvent{}, fmt.Errorf("%w: missing id", ErrUserInput)
	}
	d, err := ParseDate(date)
	if err != nil {
		return PointEvent{}, err
	}
	return PointEvent{
		ID:          id,
		Date:        d,
		Title:       title,
		Description: description,
		Color:       NormalizeColor(color),
	}, nil
}

// NewDurationSpan builds a span from raw user input. A layer that is not a
// number becomes 0.
func NewDurationSpan(id, startDate, endDate, title, description, color, layer string) (DurationSpan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DurationSpan{}, fmt.Errorf("%w: missing id", ErrUserInput)
	}
	start, err := ParseDate(startDate)
	if err != nil {
		return DurationSpan{}, fmt.Errorf("start date: %w", err)
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return DurationSpan{}, fmt.Errorf("end date: %w", err)
	}
	return DurationSpan{
		ID:          id,
		StartDate:   start,
		EndDate:     end,
		Title:       title,
		Description: description,
		Color:       NormalizeColor(color),
		Layer:       ParseLayer(layer),
	}, nil
}

// ParseLayer reads a layer index. Non-numeric and negative input yields 0.
func ParseLayer(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return LayerFromFloat(f)
	}
	return 0
}

// LayerFromFloat truncates a numeric layer and clamps it at 0.
func LayerFromFloat(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// AddPointEvent appends an event. The id and date must be set.
func (t *Timeline) AddPointEvent(e PointEvent) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrUserInput)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrUserInput)
	}
	if e.Color == "" {
		e.Color = DefaultColor
	}
	t.Events = append(t.Events, e)
	return nil
}

// AddDurationSpan appends a span. The id and both dates must be set.
func (t *Timeline) AddDurationSpan(s DurationSpan) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrUserInput)
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return fmt.Errorf("%w: missing date", ErrUserInput)
	}
	if s.Color == "" {
		s.Color = DefaultColor
	}
	s.Layer = max(s.Layer, 0)
	t.Timespans = append(t.Timespans, s)
	return nil
}

// DeleteByID removes every point event carrying id and returns how many went.
// Spans are not touched.
func (t *Timeline) DeleteByID(id string) int {
	kept := t.Events[:0]
	removed := 0
	for _, e := range t.Events {
		if e.ID == id {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Clear the tail so removed events are not retained by the backing array.
	for i := len(kept); i < len(t.Events); i++ {
		t.Events[i] = PointEvent{}
	}
	t.Events = kept
	return removed
}

// ReplaceFrom overwrites every field of t with src. Used by import, which
// never merges.
func (t *Timeline) ReplaceFrom(src *Timeline) {
	c := src.Clone()
	*t = *c
}

// Clone returns a deep copy.
func (t *Timeline) Clone() *Timeline {
	c := *t
	c.Events = append(make([]PointEvent, 0, len(t.Events)), t.Events...)
	c.Timespans = append(make([]DurationSpan, 0, len(t.Timespans)), t.Timespans...)
	return &c
}

// Items returns events followed by spans as the tagged Item variants.
func (t *Timeline) Items() []Item {
	items := make([]Item, 0, len(t.Events)+len(t.Timespans))
	for _, e := range t.Events {
		items = append(items, e)
	}
	for _, s := range t.Timespans {
		items = append(items, s)
	}
	return items
}

// Partition splits tagged items back into their two sequences, keeping order.
func Partition(items []Item) ([]PointEvent, []DurationSpan) {
	events := []PointEvent{}
	spans := []DurationSpan{}
	for _, it := range items {
		switch v := it.(type) {
		case PointEvent:
			events = append(events, v)
		case DurationSpan:
			spans = append(spans, v)
		}
	}
	return events, spans
}
