package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/internal/domain/model"
	"github.com/okian/timeline/pkg/logger"
)

// Run executes a complete seeding run against cfg.BaseURL and returns the
// collected statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("seed")

	log.Info(ctx, "starting timeline seed",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("events", cfg.NumEvents),
		logger.Int("spans", cfg.NumSpans),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
		logger.Bool("reset", cfg.Reset))

	if cfg.Workers < 1 {
		return nil, fmt.Errorf("%w: workers must be at least 1", ErrInvalidRun)
	}
	batch, err := Generate(cfg)
	if err != nil {
		return nil, err
	}
	stats.EventsGenerated = len(batch.Events)
	stats.SpansGenerated = len(batch.Spans)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, err
	}
	if err := prepare(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("prepare timeline: %w", err)
	}
	if err := submitBatch(ctx, client, cfg, batch, stats); err != nil {
		return nil, err
	}

	raw, doc, err := export(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	stats.ExportedEvents = len(doc.Events)
	stats.ExportedSpans = len(doc.Timespans)

	if err := Verify(cfg, batch, doc, stats); err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		if err := saveDocument(ctx, cfg.OutputFile, raw); err != nil {
			log.Warn(ctx, "failed to save exported document", logger.Error(err))
		}
	}
	if cfg.Snapshot {
		id, err := snapshot(ctx, client)
		if err != nil {
			return stats, fmt.Errorf("snapshot: %w", err)
		}
		stats.SnapshotID = id
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	status, _, err := client.Do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	logger.Get().Named("seed").Info(ctx, "service is healthy")
	return nil
}

// prepare either replaces the timeline with an empty titled one or only
// widens the viewport to the generated year range.
func prepare(ctx context.Context, client *HTTPClient, cfg *Config) error {
	if cfg.Reset {
		empty := model.New()
		empty.Title = cfg.Title
		if err := empty.SetViewport(model.DefaultZoom, cfg.StartYear, cfg.EndYear); err != nil {
			return err
		}
		status, body, err := client.Do(ctx, http.MethodPost, "/document?format=json", document.Export(empty))
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("reset rejected with status %d: %s", status, body)
		}
		return nil
	}

	viewport := map[string]any{
		"zoom":       model.DefaultZoom,
		"start_year": cfg.StartYear,
		"end_year":   cfg.EndYear,
	}
	status, body, err := client.Do(ctx, http.MethodPut, "/viewport", viewport)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("viewport rejected with status %d: %s", status, body)
	}
	return nil
}

func export(ctx context.Context, client *HTTPClient) ([]byte, document.Document, error) {
	var doc document.Document
	status, body, err := client.Do(ctx, http.MethodGet, "/document?format=json", nil)
	if err != nil {
		return nil, doc, err
	}
	if status != http.StatusOK {
		return nil, doc, fmt.Errorf("unexpected status %d", status)
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, doc, fmt.Errorf("decode document: %w", err)
	}
	return body, doc, nil
}

func snapshot(ctx context.Context, client *HTTPClient) (string, error) {
	status, body, err := client.Do(ctx, http.MethodPost, "/snapshots", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d: %s", status, body)
	}
	var snap struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		return "", fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.ID, nil
}

// saveDocument writes the exported document to filename.
func saveDocument(ctx context.Context, filename string, data []byte) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, data, outputFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Get().Named("seed").Info(ctx, "document saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var itemsPerSecond float64
	if stats.Duration > 0 {
		itemsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Named("seed").Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("spansGenerated", stats.SpansGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("created", stats.Created),
		logger.Int("retried", stats.Retried),
		logger.Int("failed", stats.Failed),
		logger.Int("exportedEvents", stats.ExportedEvents),
		logger.Int("exportedSpans", stats.ExportedSpans),
		logger.String("snapshot", stats.SnapshotID),
		logger.Duration("duration", stats.Duration),
		logger.Float64("itemsPerSecond", itemsPerSecond))
}
