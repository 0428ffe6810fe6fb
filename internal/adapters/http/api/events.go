package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	service "github.com/okian/timeline/internal/app"
	"github.com/okian/timeline/internal/domain/model"
	"github.com/okian/timeline/pkg/logger"
)

// ItemDependencies defines the item and viewport operations.
type ItemDependencies interface {
	CreatePointEvent(ctx context.Context, in service.EventInput) error
	CreateDurationSpan(ctx context.Context, in service.SpanInput) error
	DeleteByID(ctx context.Context, id string) (int, error)
	SetViewport(ctx context.Context, zoom float64, startYear, endYear int) error
}

// ItemsHandler handles event, timespan and viewport requests.
type ItemsHandler struct {
	deps   ItemDependencies
	logger logger.Logger
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(deps ItemDependencies, l logger.Logger) *ItemsHandler {
	return &ItemsHandler{deps: deps, logger: l}
}

// eventRequest mirrors the OpenAPI schema for POST /events. Color may be a
// hex string or an [r, g, b] array.
type eventRequest struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       any    `json:"color"`
}

// timespanRequest mirrors the OpenAPI schema for POST /timespans. Layer may
// be a number or a numeric string.
type timespanRequest struct {
	ID          string `json:"id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       any    `json:"color"`
	Layer       any    `json:"layer"`
}

type viewportRequest struct {
	Zoom      *float64 `json:"zoom"`
	StartYear *int     `json:"start_year"`
	EndYear   *int     `json:"end_year"`
}

type viewportResponse struct {
	Zoom      float64 `json:"zoom"`
	StartYear int     `json:"start_year"`
	EndYear   int     `json:"end_year"`
}

type deleteResponse struct {
	ID      string `json:"id"`
	Removed int    `json:"removed"`
}

// HandlePostEvent handles POST /events requests.
func (h *ItemsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in := service.EventInput{
		ID:          strings.TrimSpace(req.ID),
		Date:        req.Date,
		Title:       req.Title,
		Description: req.Description,
		Color:       model.NormalizeColor(req.Color),
	}
	if err := h.deps.CreatePointEvent(r.Context(), in); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, statusResponse{Status: "created", ID: in.ID})
}

// HandlePostTimespan handles POST /timespans requests.
func (h *ItemsHandler) HandlePostTimespan(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_timespan"
	var req timespanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in := service.SpanInput{
		ID:          strings.TrimSpace(req.ID),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Title:       req.Title,
		Description: req.Description,
		Color:       model.NormalizeColor(req.Color),
		Layer:       layerString(req.Layer),
	}
	if err := h.deps.CreateDurationSpan(r.Context(), in); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, statusResponse{Status: "created", ID: in.ID})
}

// HandleDeleteEvent handles DELETE /events/{id} requests. Deleting an id
// nobody uses is not an error; the response reports zero removals.
func (h *ItemsHandler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_event"
	id := mux.Vars(r)["id"]
	n, err := h.deps.DeleteByID(r.Context(), id)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{ID: id, Removed: n})
}

// HandlePutViewport handles PUT /viewport requests. All three fields are required.
func (h *ItemsHandler) HandlePutViewport(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_viewport"
	var req viewportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Zoom == nil || req.StartYear == nil || req.EndYear == nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("zoom, start_year and end_year are required")))
		return
	}
	if err := h.deps.SetViewport(r.Context(), *req.Zoom, *req.StartYear, *req.EndYear); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, viewportResponse{Zoom: *req.Zoom, StartYear: *req.StartYear, EndYear: *req.EndYear})
}

// layerString turns a decoded JSON layer into the textual form ParseLayer reads.
func layerString(v any) string {
	switch l := v.(type) {
	case string:
		return l
	case float64:
		return strconv.Itoa(model.LayerFromFloat(l))
	default:
		return ""
	}
}
