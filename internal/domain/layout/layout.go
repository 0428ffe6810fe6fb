// Package layout orders timeline items for drawing and assigns their vertical slots.
//
// Event labels are placed in a fixed repeating cycle of bands by position in
// the sorted sequence. Text width is never measured, so dense clusters of
// wide titles can still overlap.
package layout

import (
	"slices"

	"github.com/okian/timeline/internal/domain/model"
)

// Default layout geometry, in pixels.
const (
	DefaultCycle        = 4
	DefaultStep         = 30
	DefaultSpanStep     = 25
	DefaultSpanHeight   = 20
	DefaultSpanBaseline = 60
)

// Options holds the layout geometry.
type Options struct {
	// Cycle is the number of event bands before the pattern repeats.
	Cycle int
	// Step is the vertical distance between event bands.
	Step int
	// SpanStep is the vertical distance between span layers.
	SpanStep int
	// SpanHeight is the height of a span band.
	SpanHeight int
	// SpanBaseline is the gap between the axis and the bottom of layer 0.
	SpanBaseline int
}

// DefaultOptions returns the stock geometry.
func DefaultOptions() Options {
	return Options{
		Cycle:        DefaultCycle,
		Step:         DefaultStep,
		SpanStep:     DefaultSpanStep,
		SpanHeight:   DefaultSpanHeight,
		SpanBaseline: DefaultSpanBaseline,
	}
}

// Option mutates Options.
type Option func(*Options)

// WithCycle sets the event band cycle length. Values below 1 are ignored.
func WithCycle(n int) Option {
	return func(o *Options) {
		if n >= 1 {
			o.Cycle = n
		}
	}
}

// WithStep sets the event band step.
func WithStep(px int) Option {
	return func(o *Options) { o.Step = px }
}

// WithSpanGeometry sets span layer step, band height and baseline gap.
func WithSpanGeometry(step, height, baseline int) Option {
	return func(o *Options) {
		o.SpanStep = step
		o.SpanHeight = height
		o.SpanBaseline = baseline
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CompareEvents orders events by date only. Equal dates compare equal.
func CompareEvents(a, b model.PointEvent) int {
	return a.Date.Compare(b.Date)
}

// SortEvents sorts events by date ascending in place. The sort is stable so
// events sharing a date keep their relative order across repeated sorts.
func SortEvents(events []model.PointEvent) {
	slices.SortStableFunc(events, CompareEvents)
}

// SortedEvents returns a sorted copy and leaves events untouched.
func SortedEvents(events []model.PointEvent) []model.PointEvent {
	out := slices.Clone(events)
	if out == nil {
		out = []model.PointEvent{}
	}
	SortEvents(out)
	return out
}

// Band returns the vertical offset of the index-th (0-based) item in a cycle
// of the given length. Band 0 has offset 0 and sits at the top padding,
// farthest from the axis; each later band is one step further down.
func Band(index, cycle, step int) int {
	if cycle < 1 {
		return 0
	}
	k := index % cycle
	if k < 0 {
		k += cycle
	}
	return k * step
}

// Bands returns the offset of each of n consecutive sorted events.
func (o Options) Bands(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = Band(i, o.Cycle, o.Step)
	}
	return out
}

// SpanSlot returns the distance from the axis to the bottom edge of a span at
// layer. Layers stack upward; negative layers are treated as 0.
func (o Options) SpanSlot(layer int) int {
	return o.SpanBaseline + max(layer, 0)*o.SpanStep
}

// Placement is a sorted event together with its band offset.
type Placement struct {
	Event  model.PointEvent
	Offset int
}

// PlaceEvents sorts a copy of events and assigns each its band.
func (o Options) PlaceEvents(events []model.PointEvent) []Placement {
	sorted := SortedEvents(events)
	out := make([]Placement, len(sorted))
	for i, e := range sorted {
		out[i] = Placement{Event: e, Offset: Band(i, o.Cycle, o.Step)}
	}
	return out
}
