// Package config defines process configuration and how it is loaded.
//
// Values are layered: defaults from New, then an optional YAML file, then
// TIMELINE_ environment variables.
package config

import (
	"github.com/okian/timeline/internal/domain/layout"
	"github.com/okian/timeline/internal/domain/model"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the pending command queue.
	QueueSize int `koanf:"queue_size"`

	// CanvasWidth fixes the render width. Zero derives it from the year range.
	CanvasWidth  int `koanf:"canvas_width"`
	CanvasHeight int `koanf:"canvas_height"`

	// Band and span layer geometry.
	BandCycle    int `koanf:"band_cycle"`
	BandStep     int `koanf:"band_step"`
	SpanStep     int `koanf:"span_step"`
	SpanHeight   int `koanf:"span_height"`
	SpanBaseline int `koanf:"span_baseline"`

	// Initial viewport of a fresh timeline.
	DefaultZoom      float64 `koanf:"default_zoom"`
	DefaultStartYear int     `koanf:"default_start_year"`
	DefaultEndYear   int     `koanf:"default_end_year"`

	// MaxYearSpan caps end - start year of any viewport the service accepts.
	MaxYearSpan int `koanf:"max_year_span"`

	// Store is "memory" or "postgres".
	Store       string `koanf:"store"`
	DatabaseURL string `koanf:"database_url"`

	// RestoreLatest loads the newest snapshot on start.
	RestoreLatest bool `koanf:"restore_latest"`

	// MaxDocumentBytes caps import request bodies.
	MaxDocumentBytes int64 `koanf:"max_document_bytes"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        1024,
		CanvasWidth:      0,
		CanvasHeight:     600,
		BandCycle:        layout.DefaultCycle,
		BandStep:         layout.DefaultStep,
		SpanStep:         layout.DefaultSpanStep,
		SpanHeight:       layout.DefaultSpanHeight,
		SpanBaseline:     layout.DefaultSpanBaseline,
		DefaultZoom:      model.DefaultZoom,
		DefaultStartYear: model.DefaultStartYear,
		DefaultEndYear:   model.DefaultEndYear,
		MaxYearSpan:      model.DefaultMaxYearSpan,
		Store:            StoreMemory,
		RestoreLatest:    false,
		MaxDocumentBytes: 10 << 20,
	}
}

// Layout returns the band and span geometry.
func (c *Config) Layout() layout.Options {
	return layout.NewOptions(
		layout.WithCycle(c.BandCycle),
		layout.WithStep(c.BandStep),
		layout.WithSpanGeometry(c.SpanStep, c.SpanHeight, c.SpanBaseline),
	)
}
