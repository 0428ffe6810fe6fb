package seed

import (
	"fmt"

	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/internal/domain/model"
)

// Verify checks an exported document against the submitted batch: events
// are in date order, every created item is present, and after a reset the
// document holds exactly what was created.
func Verify(cfg *Config, b Batch, doc document.Document, stats *Stats) error {
	if err := verifyOrder(doc.Events); err != nil {
		return err
	}
	if doc.Offset != cfg.StartYear || doc.End != cfg.EndYear {
		return fmt.Errorf("%w: viewport %d..%d, want %d..%d", ErrVerification, doc.Offset, doc.End, cfg.StartYear, cfg.EndYear)
	}

	present := make(map[string]struct{}, len(doc.Events)+len(doc.Timespans))
	for _, e := range doc.Events {
		present[e.ID] = struct{}{}
	}
	for _, s := range doc.Timespans {
		present[s.ID] = struct{}{}
	}
	found := 0
	for _, e := range b.Events {
		if _, ok := present[e.ID]; ok {
			found++
		}
	}
	for _, s := range b.Spans {
		if _, ok := present[s.ID]; ok {
			found++
		}
	}
	if found < stats.Created {
		return fmt.Errorf("%w: %d of %d created items exported", ErrVerification, found, stats.Created)
	}

	if cfg.Reset {
		if got := len(doc.Events) + len(doc.Timespans); got != stats.Created {
			return fmt.Errorf("%w: exported %d items after reset, created %d", ErrVerification, got, stats.Created)
		}
		if doc.Title != cfg.Title {
			return fmt.Errorf("%w: title %q, want %q", ErrVerification, doc.Title, cfg.Title)
		}
	}
	return nil
}

// verifyOrder requires events sorted by date.
func verifyOrder(events []document.EventRecord) error {
	var prev model.PointEvent
	for i, rec := range events {
		d, err := model.ParseDate(rec.Date)
		if err != nil {
			return fmt.Errorf("%w: event %q: %w", ErrVerification, rec.ID, err)
		}
		if i > 0 && d.Before(prev.Date) {
			return fmt.Errorf("%w: event %q at %s precedes %q at %s", ErrVerification,
				rec.ID, rec.Date, prev.ID, model.FormatDate(prev.Date))
		}
		prev = model.PointEvent{ID: rec.ID, Date: d}
	}
	return nil
}
