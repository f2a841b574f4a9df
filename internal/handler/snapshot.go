package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/moveready/internal/anchor"
)

// SnapshotHandler serves anchors: saved copies of the inventory, tasks and
// groceries that can be restored later.
type SnapshotHandler struct {
	docs
}

func NewSnapshotHandler(replicas Replicas, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{docs{replicas: replicas, logger: logger}}
}

// List handles GET /api/snapshots
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, anchor.List(s.State()))
}

// Create handles POST /api/snapshots
func (h *SnapshotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	snap, p := anchor.Create(s, req.Label, s.Now())
	h.finish(w, r, s, p, http.StatusCreated, func() any { return snap })
}

// Restore handles POST /api/snapshots/{id}/restore
func (h *SnapshotHandler) Restore(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, found := anchor.Get(s.State(), id); !found {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	h.finish(w, r, s, anchor.Restore(s, id), http.StatusOK, func() any { return stateOf(s) })
}

// Delete handles DELETE /api/snapshots/{id}
func (h *SnapshotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, anchor.Delete(s, r.PathValue("id")), http.StatusNoContent, nil)
}
