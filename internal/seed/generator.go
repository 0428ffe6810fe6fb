package seed

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/internal/domain/model"
)

// namespace scopes the generated item ids.
var namespace = uuid.MustParse("6f1c3c52-8d0e-4f58-9a3b-7f0e2c1d4b8a")

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728",
	"#9467bd", "#8c564b", "#e377c2", "#17becf",
}

var subjects = []string{
	"Launch", "Release", "Merger", "Office opened", "Funding round",
	"Rebrand", "Audit", "Partnership", "Expansion", "Milestone",
}

// Generate builds a deterministic batch from cfg. Ids are name based UUIDs
// derived from the seed and the item position, so reruns with the same seed
// address the same items.
func Generate(cfg *Config) (Batch, error) {
	if cfg.EndYear < cfg.StartYear {
		return Batch{}, fmt.Errorf("%w: year range %d..%d", ErrInvalidRun, cfg.StartYear, cfg.EndYear)
	}
	if cfg.NumEvents < 0 || cfg.NumSpans < 0 {
		return Batch{}, fmt.Errorf("%w: negative item count", ErrInvalidRun)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	from := time.Date(cfg.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(time.Date(cfg.EndYear+1, time.January, 1, 0, 0, 0, 0, time.UTC).Sub(from).Hours() / 24)

	b := Batch{
		Events: make([]document.EventRecord, cfg.NumEvents),
		Spans:  make([]document.SpanRecord, cfg.NumSpans),
	}
	for i := range b.Events {
		d := from.AddDate(0, 0, rng.IntN(days))
		b.Events[i] = document.EventRecord{
			ID:          itemID(cfg.Seed, "event", i),
			Date:        model.FormatDate(d),
			Title:       fmt.Sprintf("%s %d", subjects[rng.IntN(len(subjects))], i+1),
			Description: description(rng, d),
			Color:       palette[rng.IntN(len(palette))],
		}
	}
	for i := range b.Spans {
		start := from.AddDate(0, 0, rng.IntN(days))
		end := start.AddDate(0, 0, 30+rng.IntN(720))
		b.Spans[i] = document.SpanRecord{
			ID:        itemID(cfg.Seed, "span", i),
			StartDate: model.FormatDate(start),
			EndDate:   model.FormatDate(end),
			Title:     fmt.Sprintf("Phase %d", i+1),
			Color:     palette[rng.IntN(len(palette))],
			Layer:     i % maxSpanLayers,
		}
	}
	return b, nil
}

// description leaves roughly a third of events without one.
func description(rng *rand.Rand, d time.Time) string {
	if rng.IntN(3) == 0 {
		return ""
	}
	return "Recorded in " + d.Month().String()
}

func itemID(seed uint64, kind string, i int) string {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], seed)
	binary.BigEndian.PutUint64(buf[8:], uint64(i))
	return uuid.NewSHA1(namespace, append([]byte(kind), buf[:]...)).String()
}
