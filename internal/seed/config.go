package seed

import (
	"time"

	"github.com/okian/timeline/internal/domain/document"
)

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Reset      bool          // Replace the timeline with an empty one first
	Title      string        // Title of the reset timeline
	NumEvents  int           // Number of point events to generate
	NumSpans   int           // Number of duration spans to generate
	StartYear  int           // First year items may fall in
	EndYear    int           // Last year items may fall in
	Seed       uint64        // Generator seed; equal seeds give equal timelines
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Retries    int           // Attempts per item when the service pushes back
	Snapshot   bool          // Take a snapshot after verification
	OutputFile string        // Write the exported document here when set
	Verbose    bool          // Enable debug logging
}

// Batch is the generated content of one run.
type Batch struct {
	Events []document.EventRecord
	Spans  []document.SpanRecord
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated int
	SpansGenerated  int
	Submitted       int
	Created         int
	Retried         int
	Failed          int
	ExportedEvents  int
	ExportedSpans   int
	SnapshotID      string
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
