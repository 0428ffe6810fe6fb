package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/pkg/logger"
)

// DocumentDependencies defines export and import.
type DocumentDependencies interface {
	Export(ctx context.Context, format document.Format) ([]byte, error)
	Import(ctx context.Context, data []byte, format document.Format) (document.Report, error)
}

// DocumentHandler handles document export and import requests.
type DocumentHandler struct {
	deps     DocumentDependencies
	maxBytes int64
	logger   logger.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(deps DocumentDependencies, maxBytes int64, l logger.Logger) *DocumentHandler {
	return &DocumentHandler{deps: deps, maxBytes: maxBytes, logger: l}
}

type importResponse struct {
	Status string          `json:"status"`
	Report document.Report `json:"report"`
}

// HandleGetDocument handles GET /document?format=json|yaml requests.
func (h *DocumentHandler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_document"
	format, err := document.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	data, err := h.deps.Export(r.Context(), format)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="timeline.`+string(format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandlePostDocument handles POST /document requests. The format comes from
// the query, then the Content-Type, then defaults to JSON. The timeline is
// replaced only when the whole document parses.
func (h *DocumentHandler) HandlePostDocument(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_document"
	format, err := requestFormat(r)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	rep, err := h.deps.Import(r.Context(), data, format)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Status: "imported", Report: rep})
}

func requestFormat(r *http.Request) (document.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return document.ParseFormat(q)
	}
	if strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "yaml") {
		return document.FormatYAML, nil
	}
	return document.FormatJSON, nil
}
