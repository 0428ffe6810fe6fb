// Package coords maps calendar dates onto horizontal pixel offsets.
package coords

import (
	"math"
	"time"

	"github.com/okian/timeline/internal/domain/model"
)

const secondsPerDay = 86400

// Origin returns the date at pixel offset 0 for a start year.
func Origin(year int) time.Time {
	return model.YearStart(year)
}

// Days returns the whole calendar days from origin to date, truncated toward
// zero. Dates before origin give negative values.
func Days(date, origin time.Time) int64 {
	return (date.Unix() - origin.Unix()) / secondsPerDay
}

// MaxPixel bounds the magnitude of any offset ToPixel returns.
const MaxPixel = math.MaxInt32

// ToPixel converts date to a pixel offset from origin: whole days times zoom,
// floored. A zoom of 1 is one pixel per day. Results saturate at ±MaxPixel,
// and a NaN product maps to 0.
func ToPixel(date, origin time.Time, zoom float64) int {
	px := math.Floor(float64(Days(date, origin)) * zoom)
	switch {
	case math.IsNaN(px):
		return 0
	case px > MaxPixel:
		return MaxPixel
	case px < -MaxPixel:
		return -MaxPixel
	}
	return int(px)
}

// Mapper binds ToPixel to a fixed origin and zoom.
type Mapper struct {
	origin time.Time
	zoom   float64
}

// NewMapper resolves the origin from startYear.
func NewMapper(startYear int, zoom float64) Mapper {
	return Mapper{origin: Origin(startYear), zoom: zoom}
}

// ForTimeline builds a Mapper from a timeline's current viewport.
func ForTimeline(t *model.Timeline) Mapper {
	return NewMapper(t.StartYear, t.Zoom)
}

// X returns the pixel offset of date.
func (m Mapper) X(date time.Time) int {
	return ToPixel(date, m.origin, m.zoom)
}

// YearX returns the pixel offset of Jan 1 of year.
func (m Mapper) YearX(year int) int {
	return m.X(model.YearStart(year))
}

// MonthX returns the pixel offset of the first day of month in year.
func (m Mapper) MonthX(year int, month time.Month) int {
	return m.X(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// Origin returns the mapper's origin date.
func (m Mapper) Origin() time.Time { return m.origin }

// Zoom returns the mapper's zoom factor.
func (m Mapper) Zoom() float64 { return m.zoom }
