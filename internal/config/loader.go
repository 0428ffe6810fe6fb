package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/timeline/internal/domain/model"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TIMELINE_"

// EnvConfigFile names the variable holding the YAML file path.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TIMELINE_CONFIG is set
//  3. env (prefix TIMELINE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TIMELINE_QUEUE_SIZE -> queue_size. Underscores are kept to match the
	// flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file location is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.BandCycle < 1 {
		return fmt.Errorf("%w: band_cycle must be at least 1, got %d", ErrInvalidConfig, c.BandCycle)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be at least 1, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.CanvasWidth < 0 || c.CanvasHeight < 1 {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidConfig, c.CanvasWidth, c.CanvasHeight)
	}
	if c.MaxDocumentBytes < 1 {
		return fmt.Errorf("%w: max_document_bytes must be positive", ErrInvalidConfig)
	}
	if c.MaxYearSpan < 1 {
		return fmt.Errorf("%w: max_year_span must be at least 1, got %d", ErrInvalidConfig, c.MaxYearSpan)
	}
	if err := model.ValidateViewport(c.DefaultZoom, c.DefaultStartYear, c.DefaultEndYear); err != nil {
		return fmt.Errorf("%w: default viewport: %w", ErrInvalidConfig, err)
	}
	if err := model.CheckYearSpan(c.DefaultStartYear, c.DefaultEndYear, c.MaxYearSpan); err != nil {
		return fmt.Errorf("%w: default viewport: %w", ErrInvalidConfig, err)
	}
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	return nil
}
