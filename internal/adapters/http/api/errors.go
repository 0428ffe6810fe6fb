package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/timeline/internal/adapters/mq/queue"
	"github.com/okian/timeline/internal/adapters/repository"
	service "github.com/okian/timeline/internal/app"
	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrTooLarge    = errors.New("request body too large")
	ErrInvalidForm = errors.New("invalid query parameter")
)

// Wrap prefixes err with the operation name.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind tags err with kind so classify can map it.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind returns an error of kind for op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// classify maps an error kind to an HTTP status and a stable code.
func classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, model.ErrUserInput):
		return http.StatusBadRequest, "user_input"
	case errors.Is(err, model.ErrDegenerateConfig):
		return http.StatusBadRequest, "degenerate_config"
	case errors.Is(err, document.ErrImportParse):
		return http.StatusBadRequest, "import_parse"
	case errors.Is(err, document.ErrUnsupportedFormat), errors.Is(err, service.ErrRenderFormat):
		return http.StatusBadRequest, "unsupported_format"
	case errors.Is(err, service.ErrCanvasTooLarge):
		return http.StatusBadRequest, "canvas_too_large"
	case errors.Is(err, repository.ErrInvalidID):
		return http.StatusBadRequest, "invalid_id"
	case errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "invalid_limit"
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidForm):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure), errors.Is(err, queue.ErrFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
