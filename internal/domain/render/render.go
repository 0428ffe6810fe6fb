// Package render draws a Timeline onto a Surface.
//
// Every call clears the surface and redraws everything: the axis, year and
// month separators, events in date order and spans in stored order. The
// Renderer keeps no state between calls, so repeated renders of unchanged
// input produce identical output.
package render

import (
	"strconv"
	"time"

	"github.com/okian/timeline/internal/domain/coords"
	"github.com/okian/timeline/internal/domain/layout"
	"github.com/okian/timeline/internal/domain/model"
)

// Renderer issues draw primitives for a timeline.
type Renderer struct {
	layout   layout.Options
	geometry Geometry
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLayout sets band and span layer geometry.
func WithLayout(o layout.Options) Option {
	return func(r *Renderer) { r.layout = o }
}

// WithGeometry overrides the drawing constants.
func WithGeometry(g Geometry) Option {
	return func(r *Renderer) { r.geometry = g }
}

// New returns a Renderer with the default layout and geometry.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		layout:   layout.DefaultOptions(),
		geometry: DefaultGeometry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result summarises one render.
type Result struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	Events     int `json:"events"`
	Timespans  int `json:"timespans"`
	Primitives int `json:"primitives"`
}

// CanvasWidth returns the surface width that fits the whole timeline: the
// pixel offset of Jan 1 two years after the end year.
func CanvasWidth(t *model.Timeline) int {
	return max(coords.ForTimeline(t).YearX(t.EndYear+2), 1)
}

// Render draws t onto s. The timeline is not modified.
func (r *Renderer) Render(t *model.Timeline, s Surface) Result {
	width, height := s.Size()
	p := &pass{
		s:      s,
		t:      t,
		g:      r.geometry,
		m:      coords.ForTimeline(t),
		height: float64(height),
	}
	p.axis = p.height - t.Padding.Bottom

	s.Clear()
	p.baseline()
	p.years()
	placed := r.layout.PlaceEvents(t.Events)
	for _, pl := range placed {
		p.event(pl.Event, float64(pl.Offset))
	}
	for _, span := range t.Timespans {
		p.span(span, r.layout)
	}

	return Result{
		Width:      width,
		Height:     height,
		Events:     len(placed),
		Timespans:  len(t.Timespans),
		Primitives: p.n,
	}
}

// pass carries the state of a single render call.
type pass struct {
	s      Surface
	t      *model.Timeline
	g      Geometry
	m      coords.Mapper
	height float64
	axis   float64
	n      int
}

func (p *pass) rect(r Rect, paint Paint) {
	p.s.FillRect(r, paint)
	p.n++
}

func (p *pass) text(s string, x, y float64, f Font, paint Paint) {
	p.s.FillText(s, x, y, f, paint)
	p.n++
}

// centered draws s with its horizontal midpoint at x.
func (p *pass) centered(s string, x, y float64, f Font, paint Paint) {
	w := p.s.MeasureText(s, f)
	p.text(s, x-w/2, y, f, paint)
}

func (p *pass) x(d time.Time) float64 {
	return float64(p.m.X(d)) + p.t.Padding.Left
}

// baseline draws the axis bar up to Jan 1 after the end year, plus room for
// the last separator.
func (p *pass) baseline() {
	w := float64(p.m.YearX(p.t.EndYear+1)) + p.g.SeparatorWidth
	p.rect(Rect{X: p.t.Padding.Left, Y: p.axis, W: w, H: p.g.BaselineHeight}, Solid(p.g.AxisColor))
}

// years draws a separator for every year through the end year plus one, and
// a label and month ticks for every year but that last one.
func (p *pass) years() {
	top := p.t.Padding.Top
	axis := Solid(p.g.AxisColor)
	tick := Solid(p.g.MonthTickColor)
	label := SansSerif(p.g.YearLabelSize)

	for year := p.t.StartYear; year < p.t.EndYear+2; year++ {
		x := float64(p.m.YearX(year)) + p.t.Padding.Left
		if year <= p.t.EndYear {
			p.text(strconv.Itoa(year), x, p.axis+p.g.YearLabelDrop, label, axis)
			for month := time.February; month <= time.December; month++ {
				mx := float64(p.m.MonthX(year, month)) + p.t.Padding.Left
				p.rect(Rect{X: mx, Y: p.axis - p.g.MonthTick, W: 1, H: p.g.MonthTick}, tick)
			}
		}
		p.rect(Rect{X: x, Y: top, W: p.g.SeparatorWidth, H: p.axis - top}, axis)
	}
}

// event draws the marker and labels of e. A positive offset moves everything
// down from the top padding.
func (p *pass) event(e model.PointEvent, offset float64) {
	x := p.x(e.Date)
	top := p.t.Padding.Top + offset
	paint := Solid(e.Color)

	p.rect(Rect{X: x, Y: top, W: p.g.MarkerWidth, H: p.axis - top}, paint)
	p.centered(e.Title, x, top-p.g.TitleRise, SansSerif(p.g.TitleSize), paint)
	p.centered(model.FormatDate(e.Date), x, top-p.g.DateRise, SansSerif(p.g.DateSize), paint)
	if e.Description != "" {
		p.centered(e.Description, x, top+p.g.DescriptionDrop, SansSerif(p.g.DescriptionSize), paint)
	}
}

// span draws s as a translucent band at its layer with a contrasting title.
func (p *pass) span(s model.DurationSpan, o layout.Options) {
	x0 := p.x(s.StartDate)
	x1 := p.x(s.EndDate)
	h := float64(o.SpanHeight)
	y := p.axis - float64(o.SpanSlot(s.Layer)) - h

	p.rect(Rect{X: x0, Y: y, W: x1 - x0, H: h}, Paint{Color: s.Color, Opacity: p.g.SpanOpacity})
	if s.Title != "" {
		f := SansSerif(p.g.SpanTitleSize)
		p.centered(s.Title, (x0+x1)/2, y+h/2+f.Size/3, f, Solid(Foreground(s.Color)))
	}
}
