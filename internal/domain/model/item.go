// Package model contains the timeline document and the items it owns.
package model

import "time"

// DefaultColor is the brand colour applied to items created without one.
const DefaultColor = "#990000"

// Kind names an item variant.
type Kind string

const (
	KindPointEvent   Kind = "event"
	KindDurationSpan Kind = "timespan"
)

// Item is either a PointEvent or a DurationSpan.
type Item interface {
	ItemID() string
	Kind() Kind
	isItem()
}

// PointEvent is a single dated occurrence drawn as a marker on the axis.
type PointEvent struct {
	ID          string
	Date        time.Time // civil date, UTC midnight
	Title       string
	Description string
	Color       string
}

func (e PointEvent) ItemID() string { return e.ID }
func (e PointEvent) Kind() Kind     { return KindPointEvent }
func (PointEvent) isItem()          {}

// DurationSpan covers a date range and is drawn as a band at its layer.
// StartDate after EndDate is accepted and rendered as-is.
type DurationSpan struct {
	ID          string
	StartDate   time.Time
	EndDate     time.Time
	Title       string
	Description string
	Color       string
	Layer       int
}

func (s DurationSpan) ItemID() string { return s.ID }
func (s DurationSpan) Kind() Kind     { return KindDurationSpan }
func (DurationSpan) isItem()          {}

// Inverted reports whether the span ends before it starts.
func (s DurationSpan) Inverted() bool { return s.EndDate.Before(s.StartDate) }
