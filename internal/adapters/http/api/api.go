// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/timeline/internal/adapters/repository"
	service "github.com/okian/timeline/internal/app"
	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/pkg/logger"
)

// DefaultMaxDocumentBytes bounds POST /document bodies.
const DefaultMaxDocumentBytes = 10 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreatePointEvent(ctx context.Context, in service.EventInput) error
	CreateDurationSpan(ctx context.Context, in service.SpanInput) error
	DeleteByID(ctx context.Context, id string) (int, error)
	SetViewport(ctx context.Context, zoom float64, startYear, endYear int) error

	Export(ctx context.Context, format document.Format) ([]byte, error)
	Import(ctx context.Context, data []byte, format document.Format) (document.Report, error)
	Render(ctx context.Context, req service.RenderRequest) (service.RenderOutput, error)

	Snapshot(ctx context.Context) (repository.Snapshot, error)
	Snapshots(ctx context.Context, limit int) ([]repository.Snapshot, error)
	Restore(ctx context.Context, id string) (document.Report, error)
}

// Server wires HTTP routes for the timeline API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	itemsHandler     *ItemsHandler
	documentHandler  *DocumentHandler
	renderHandler    *RenderHandler
	snapshotsHandler *SnapshotsHandler

	logger logger.Logger
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxDocumentBytes int64
	logger           logger.Logger
}

// WithMaxDocumentBytes bounds the size of imported documents.
func WithMaxDocumentBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxDocumentBytes = n
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{maxDocumentBytes: DefaultMaxDocumentBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("api")
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		itemsHandler:     NewItemsHandler(deps, o.logger),
		documentHandler:  NewDocumentHandler(deps, o.maxDocumentBytes, o.logger),
		renderHandler:    NewRenderHandler(deps, o.logger),
		snapshotsHandler: NewSnapshotsHandler(deps, o.logger),
		logger:           o.logger,
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.Use(RequestID)
	r.Use(Recovery(s.logger))

	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	r.HandleFunc("/events", MetricsMiddleware(s.itemsHandler.HandlePostEvent, "events")).Methods(http.MethodPost)
	r.HandleFunc("/events/{id}", MetricsMiddleware(s.itemsHandler.HandleDeleteEvent, "events")).Methods(http.MethodDelete)
	r.HandleFunc("/timespans", MetricsMiddleware(s.itemsHandler.HandlePostTimespan, "timespans")).Methods(http.MethodPost)
	r.HandleFunc("/viewport", MetricsMiddleware(s.itemsHandler.HandlePutViewport, "viewport")).Methods(http.MethodPut)

	r.HandleFunc("/document", MetricsMiddleware(s.documentHandler.HandleGetDocument, "document")).Methods(http.MethodGet)
	r.HandleFunc("/document", MetricsMiddleware(s.documentHandler.HandlePostDocument, "document")).Methods(http.MethodPost)
	r.HandleFunc("/render", MetricsMiddleware(s.renderHandler.HandleRender, "render")).Methods(http.MethodGet)

	r.HandleFunc("/snapshots", MetricsMiddleware(s.snapshotsHandler.HandleCreate, "snapshots")).Methods(http.MethodPost)
	r.HandleFunc("/snapshots", MetricsMiddleware(s.snapshotsHandler.HandleList, "snapshots")).Methods(http.MethodGet)
	r.HandleFunc("/snapshots/{id}/restore", MetricsMiddleware(s.snapshotsHandler.HandleRestore, "restore")).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes err with the status its kind maps to. Server errors are logged.
func fail(ctx context.Context, l logger.Logger, w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed",
			logger.String("requestID", RequestIDFromContext(ctx)),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}
