// Package document converts a Timeline to and from its portable document form
// and upgrades older documents on the way in.
package document

import (
	"github.com/okian/timeline/internal/domain/layout"
	"github.com/okian/timeline/internal/domain/model"
)

// Document is the exported shape of a timeline.
type Document struct {
	Title     string        `json:"title" yaml:"title"`
	Padding   Padding       `json:"padding" yaml:"padding"`
	Zoom      float64       `json:"zoom" yaml:"zoom"`
	Offset    int           `json:"offset" yaml:"offset"`
	End       int           `json:"end" yaml:"end"`
	Events    []EventRecord `json:"events" yaml:"events"`
	Timespans []SpanRecord  `json:"timespans" yaml:"timespans"`
}

// Padding mirrors model.Padding.
type Padding struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// EventRecord is a point event as written to a document.
type EventRecord struct {
	ID          string `json:"id" yaml:"id"`
	Date        string `json:"date" yaml:"date"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Color       string `json:"color" yaml:"color"`
}

// SpanRecord is a duration span as written to a document.
type SpanRecord struct {
	ID          string `json:"id" yaml:"id"`
	StartDate   string `json:"start_date" yaml:"start_date"`
	EndDate     string `json:"end_date" yaml:"end_date"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Color       string `json:"color" yaml:"color"`
	Layer       int    `json:"layer" yaml:"layer"`
}

// Export builds the document for t. Events are written in draw order; spans
// keep their stored order. Dates use model.DateLayout.
func Export(t *model.Timeline) Document {
	doc := Document{
		Title: t.Title,
		Padding: Padding{
			Top:    t.Padding.Top,
			Right:  t.Padding.Right,
			Bottom: t.Padding.Bottom,
			Left:   t.Padding.Left,
		},
		Zoom:      t.Zoom,
		Offset:    t.StartYear,
		End:       t.EndYear,
		Events:    make([]EventRecord, 0, len(t.Events)),
		Timespans: make([]SpanRecord, 0, len(t.Timespans)),
	}
	for _, e := range layout.SortedEvents(t.Events) {
		doc.Events = append(doc.Events, EventRecord{
			ID:          e.ID,
			Date:        model.FormatDate(e.Date),
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		})
	}
	for _, s := range t.Timespans {
		doc.Timespans = append(doc.Timespans, SpanRecord{
			ID:          s.ID,
			StartDate:   model.FormatDate(s.StartDate),
			EndDate:     model.FormatDate(s.EndDate),
			Title:       s.Title,
			Description: s.Description,
			Color:       s.Color,
			Layer:       s.Layer,
		})
	}
	return doc
}

// Marshal exports t and encodes it in one step.
func Marshal(t *model.Timeline, format Format) ([]byte, error) {
	return Encode(Export(t), format)
}
