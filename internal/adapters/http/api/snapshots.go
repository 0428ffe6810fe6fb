package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/okian/timeline/internal/adapters/repository"
	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/pkg/logger"
)

// SnapshotDependencies defines snapshot operations.
type SnapshotDependencies interface {
	Snapshot(ctx context.Context) (repository.Snapshot, error)
	Snapshots(ctx context.Context, limit int) ([]repository.Snapshot, error)
	Restore(ctx context.Context, id string) (document.Report, error)
}

// SnapshotsHandler handles snapshot requests.
type SnapshotsHandler struct {
	deps   SnapshotDependencies
	logger logger.Logger
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(deps SnapshotDependencies, l logger.Logger) *SnapshotsHandler {
	return &SnapshotsHandler{deps: deps, logger: l}
}

type snapshotListResponse struct {
	Snapshots []repository.Snapshot `json:"snapshots"`
}

type restoreResponse struct {
	Status string          `json:"status"`
	ID     string          `json:"id"`
	Report document.Report `json:"report"`
}

// HandleCreate handles POST /snapshots requests.
func (h *SnapshotsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_snapshot"
	snap, err := h.deps.Snapshot(r.Context())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// HandleList handles GET /snapshots?limit= requests.
func (h *SnapshotsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_snapshots"
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			fail(r.Context(), h.logger, w, WrapKind(op, repository.ErrInvalidLimit, err))
			return
		}
		limit = n
	}
	snaps, err := h.deps.Snapshots(r.Context(), limit)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snapshotListResponse{Snapshots: snaps})
}

// HandleRestore handles POST /snapshots/{id}/restore requests.
func (h *SnapshotsHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	const op = "api.restore_snapshot"
	id := mux.Vars(r)["id"]
	rep, err := h.deps.Restore(r.Context(), id)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, restoreResponse{Status: "restored", ID: id, Report: rep})
}
