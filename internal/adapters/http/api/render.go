package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/timeline/internal/app"
	"github.com/okian/timeline/pkg/logger"
)

// RenderDependencies defines the render operation.
type RenderDependencies interface {
	Render(ctx context.Context, req service.RenderRequest) (service.RenderOutput, error)
}

// RenderHandler handles render requests.
type RenderHandler struct {
	deps   RenderDependencies
	logger logger.Logger
}

// NewRenderHandler creates a new render handler.
func NewRenderHandler(deps RenderDependencies, l logger.Logger) *RenderHandler {
	return &RenderHandler{deps: deps, logger: l}
}

// HandleRender handles GET /render?format=svg|png|json&width=&height= requests.
// Missing sizes fall back to the configured canvas.
func (h *RenderHandler) HandleRender(w http.ResponseWriter, r *http.Request) {
	const op = "api.render"
	q := r.URL.Query()

	format, err := service.ParseRenderFormat(q.Get("format"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	width, err := dimension(q.Get("width"))
	if err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrInvalidForm, err))
		return
	}
	height, err := dimension(q.Get("height"))
	if err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrInvalidForm, err))
		return
	}

	out, err := h.deps.Render(r.Context(), service.RenderRequest{Format: format, Width: width, Height: height})
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("X-Timeline-Primitives", strconv.Itoa(out.Result.Primitives))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

// dimension parses an optional non-negative pixel size.
func dimension(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
