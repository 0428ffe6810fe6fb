// Package service owns the single timeline and exposes the operations the
// HTTP API and the CLIs drive. Every read or write of the timeline runs as a
// command on one interaction loop, so no two operations ever overlap.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/timeline/internal/adapters/mq/queue"
	"github.com/okian/timeline/internal/adapters/mq/worker"
	"github.com/okian/timeline/internal/adapters/repository"
	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/internal/domain/layout"
	"github.com/okian/timeline/internal/domain/model"
	"github.com/okian/timeline/internal/domain/render"
	"github.com/okian/timeline/pkg/logger"
	"github.com/okian/timeline/pkg/metrics"
)

const (
	defaultQueueSize    = 1024
	defaultCanvasHeight = 600
	stopTimeout         = 5 * time.Second
)

// EventInput carries the raw fields of a new point event.
type EventInput struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// SpanInput carries the raw fields of a new duration span.
type SpanInput struct {
	ID          string `json:"id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Layer       string `json:"layer"`
}

// Service implements the API dependencies for the timeline.
type Service struct {
	mu sync.RWMutex

	// Owned by the loop goroutine once started.
	timeline *model.Timeline
	renderer *render.Renderer

	store repository.Store
	queue *queue.InMemoryQueue
	loop  *worker.InMemoryWorker

	// Configuration
	queueSize     int
	layout        layout.Options
	canvasWidth   int
	canvasHeight  int
	zoom          float64
	startYear     int
	endYear       int
	maxYearSpan   int
	restoreLatest bool

	// State
	started    bool
	cancelLoop context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:    defaultQueueSize,
		layout:       layout.DefaultOptions(),
		canvasHeight: defaultCanvasHeight,
		zoom:         model.DefaultZoom,
		startYear:    model.DefaultStartYear,
		endYear:      model.DefaultEndYear,
		maxYearSpan:  model.DefaultMaxYearSpan,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates the initial viewport, starts the interaction loop and,
// when configured, restores the newest snapshot.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	t := model.New()
	err := s.checkViewport(s.zoom, s.startYear, s.endYear)
	if err == nil {
		err = t.SetViewport(s.zoom, s.startYear, s.endYear)
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("initial viewport: %w", err)
	}
	s.timeline = t
	s.renderer = render.New(render.WithLayout(s.layout))
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.loop = worker.NewInMemoryWorker(s.queue, worker.WithLogger(s.logger.Named("loop")))
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelLoop = cancel
	go s.loop.Run(loopCtx)

	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "timeline service started",
		logger.Int("queueSize", s.queueSize),
		logger.Float64("zoom", s.zoom),
		logger.Int("startYear", s.startYear),
		logger.Int("endYear", s.endYear),
	)

	if s.restoreLatest {
		if err := s.restoreNewest(ctx); err != nil {
			s.Stop()
			return err
		}
	}
	return nil
}

// Stop closes the queue, lets the loop finish what was already accepted and
// closes the snapshot store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping timeline service...")

	_ = s.queue.Close()
	select {
	case <-s.loop.Done():
	case <-ctx.Done():
		if err := s.loop.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "interaction loop did not stop", logger.Error(err))
		}
	}
	s.cancelLoop()

	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "error closing snapshot store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "timeline service stopped")
}

// submit queues fn on the interaction loop and waits for its result.
func (s *Service) submit(ctx context.Context, name string, fn func(ctx context.Context, t *model.Timeline) error) error {
	s.mu.RLock()
	started, q := s.started, s.queue
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	cmd := queue.NewCommand(name, func(ctx context.Context) error {
		return fn(ctx, s.timeline)
	})
	if !q.Enqueue(ctx, cmd) {
		if q.IsClosed() {
			return ErrNotStarted
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Warn(ctx, "interaction queue full", logger.String("command", name))
		return fmt.Errorf("%s: %w", name, ErrBackpressure)
	}
	if err := cmd.Wait(ctx); err != nil {
		if errors.Is(err, queue.ErrClosed) {
			return ErrNotStarted
		}
		return err
	}
	return nil
}

// CreatePointEvent validates in and appends the event to the timeline.
func (s *Service) CreatePointEvent(ctx context.Context, in EventInput) error {
	e, err := model.NewPointEvent(in.ID, in.Date, in.Title, in.Description, in.Color)
	if err != nil {
		return err
	}
	return s.submit(ctx, "create_event", func(ctx context.Context, t *model.Timeline) error {
		if err := t.AddPointEvent(e); err != nil {
			return err
		}
		metrics.RecordItemCreated(string(model.KindPointEvent))
		metrics.UpdateItemCounts(len(t.Events), len(t.Timespans))
		s.logger.Info(ctx, "point event created",
			logger.String("id", e.ID),
			logger.String("date", model.FormatDate(e.Date)),
			logger.Int("events", len(t.Events)),
		)
		return nil
	})
}

// CreateDurationSpan validates in and appends the span to the timeline.
func (s *Service) CreateDurationSpan(ctx context.Context, in SpanInput) error {
	span, err := model.NewDurationSpan(in.ID, in.StartDate, in.EndDate, in.Title, in.Description, in.Color, in.Layer)
	if err != nil {
		return err
	}
	return s.submit(ctx, "create_timespan", func(ctx context.Context, t *model.Timeline) error {
		if err := t.AddDurationSpan(span); err != nil {
			return err
		}
		metrics.RecordItemCreated(string(model.KindDurationSpan))
		metrics.UpdateItemCounts(len(t.Events), len(t.Timespans))
		s.logger.Info(ctx, "duration span created",
			logger.String("id", span.ID),
			logger.Int("layer", span.Layer),
			logger.Bool("inverted", span.Inverted()),
			logger.Int("timespans", len(t.Timespans)),
		)
		return nil
	})
}

// DeleteByID removes every point event with id and returns how many went.
// Spans are not affected.
func (s *Service) DeleteByID(ctx context.Context, id string) (int, error) {
	var removed int
	err := s.submit(ctx, "delete_event", func(ctx context.Context, t *model.Timeline) error {
		removed = t.DeleteByID(id)
		metrics.RecordEventsDeleted(removed)
		metrics.UpdateItemCounts(len(t.Events), len(t.Timespans))
		s.logger.Info(ctx, "events deleted",
			logger.String("id", id),
			logger.Int("removed", removed),
		)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// checkViewport applies the model bounds plus the configured year span.
func (s *Service) checkViewport(zoom float64, startYear, endYear int) error {
	if err := model.ValidateViewport(zoom, startYear, endYear); err != nil {
		return err
	}
	return model.CheckYearSpan(startYear, endYear, s.maxYearSpan)
}

// SetViewport changes zoom and year range. A degenerate viewport, or one
// spanning more than the configured years, is rejected before it reaches the loop.
func (s *Service) SetViewport(ctx context.Context, zoom float64, startYear, endYear int) error {
	if err := s.checkViewport(zoom, startYear, endYear); err != nil {
		return err
	}
	return s.submit(ctx, "set_viewport", func(ctx context.Context, t *model.Timeline) error {
		if err := t.SetViewport(zoom, startYear, endYear); err != nil {
			return err
		}
		s.logger.Info(ctx, "viewport set",
			logger.Float64("zoom", zoom),
			logger.Int("startYear", startYear),
			logger.Int("endYear", endYear),
		)
		return nil
	})
}

// Export serialises the timeline in format.
func (s *Service) Export(ctx context.Context, format document.Format) ([]byte, error) {
	var out []byte
	err := s.submit(ctx, "export", func(ctx context.Context, t *model.Timeline) error {
		data, err := document.Marshal(t, format)
		if err != nil {
			return err
		}
		out = data
		metrics.RecordExport(string(format))
		s.logger.Debug(ctx, "document exported",
			logger.String("format", string(format)),
			logger.Int("bytes", len(data)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Import replaces the timeline with the decoded document. Parsing happens
// before the command is queued, so a malformed document never reaches the
// timeline and the previous state stays authoritative.
func (s *Service) Import(ctx context.Context, data []byte, format document.Format) (document.Report, error) {
	next, rep, err := document.Import(data, format)
	if err == nil {
		err = model.CheckYearSpan(next.StartYear, next.EndYear, s.maxYearSpan)
	}
	if err != nil {
		metrics.RecordImport(string(format), "rejected")
		s.logger.Warn(ctx, "document import rejected",
			logger.String("format", string(format)),
			logger.Error(err),
		)
		return document.Report{}, err
	}

	err = s.submit(ctx, "import", func(ctx context.Context, t *model.Timeline) error {
		t.ReplaceFrom(next)
		metrics.UpdateItemCounts(len(t.Events), len(t.Timespans))
		return nil
	})
	if err != nil {
		metrics.RecordImport(string(format), "error")
		return document.Report{}, err
	}

	metrics.RecordImport(string(format), "ok")
	for _, d := range rep.Dropped {
		metrics.RecordImportDropped(d.Reason)
	}
	s.logger.Info(ctx, "document imported",
		logger.String("format", string(format)),
		logger.Int("events", rep.Events),
		logger.Int("timespans", rep.Timespans),
		logger.Int("relocated", rep.Relocated),
		logger.Int("dropped", len(rep.Dropped)),
	)
	return rep, nil
}

// Snapshot stores the current JSON export and returns its metadata.
func (s *Service) Snapshot(ctx context.Context) (repository.Snapshot, error) {
	var snap repository.Snapshot
	err := s.submit(ctx, "snapshot", func(_ context.Context, t *model.Timeline) error {
		data, err := document.Marshal(t, document.FormatJSON)
		if err != nil {
			return err
		}
		snap = repository.Snapshot{
			Title:     t.Title,
			Events:    len(t.Events),
			Timespans: len(t.Timespans),
			Document:  data,
		}
		return nil
	})
	if err != nil {
		return repository.Snapshot{}, err
	}

	saved, err := s.store.Save(ctx, snap)
	if err != nil {
		metrics.RecordErrorByComponent("service", "snapshot_save")
		return repository.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	metrics.RecordSnapshotWritten()
	s.logger.Info(ctx, "snapshot written",
		logger.String("id", saved.ID),
		logger.Any("version", saved.Version),
		logger.Int("events", saved.Events),
		logger.Int("timespans", saved.Timespans),
	)
	saved.Document = nil
	return saved, nil
}

// Snapshots lists stored snapshots, newest first.
func (s *Service) Snapshots(ctx context.Context, limit int) ([]repository.Snapshot, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.store.List(ctx, limit)
}

// Restore imports the snapshot with id through the normal import path.
func (s *Service) Restore(ctx context.Context, id string) (document.Report, error) {
	if err := repository.ValidateSnapshotID(id); err != nil {
		return document.Report{}, err
	}
	if !s.isStarted() {
		return document.Report{}, ErrNotStarted
	}
	snap, err := s.store.Get(ctx, id)
	if err != nil {
		return document.Report{}, err
	}
	rep, err := s.Import(ctx, snap.Document, document.FormatJSON)
	if err != nil {
		return document.Report{}, err
	}
	s.logger.Info(ctx, "snapshot restored", logger.String("id", id), logger.Any("version", snap.Version))
	return rep, nil
}

func (s *Service) restoreNewest(ctx context.Context) error {
	snap, err := s.store.Latest(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Info(ctx, "no snapshot to restore")
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore latest snapshot: %w", err)
	}
	if _, err := s.Restore(ctx, snap.ID); err != nil {
		return fmt.Errorf("restore latest snapshot: %w", err)
	}
	return nil
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	started, q := s.started, s.queue
	stats := map[string]interface{}{
		"started":   started,
		"queueSize": s.queueSize,
	}
	s.mu.RUnlock()

	if !started {
		return stats
	}

	stats["queueLength"] = q.Len(ctx)
	stats["snapshots"] = s.store.Count(ctx)

	var view struct {
		title              string
		events, spans      int
		zoom               float64
		startYear, endYear int
	}
	err := s.submit(ctx, "stats", func(_ context.Context, t *model.Timeline) error {
		view.title = t.Title
		view.events, view.spans = len(t.Events), len(t.Timespans)
		view.zoom, view.startYear, view.endYear = t.Zoom, t.StartYear, t.EndYear
		metrics.UpdateItemCounts(view.events, view.spans)
		return nil
	})
	if err != nil {
		stats["error"] = err.Error()
		return stats
	}
	stats["title"] = view.title
	stats["events"] = view.events
	stats["timespans"] = view.spans
	stats["zoom"] = view.zoom
	stats["startYear"] = view.startYear
	stats["endYear"] = view.endYear
	return stats
}
