package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/syncstore"
)

type InventoryHandler struct {
	docs
}

func NewInventoryHandler(replicas Replicas, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{docs{replicas: replicas, logger: logger}}
}

func findItem(s *syncstore.Store, id string) func() any {
	return func() any {
		for _, it := range s.State().Inventory {
			if it.ID == id {
				return it
			}
		}
		return map[string]string{"id": id}
	}
}

// Create handles POST /api/items
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Item
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	item, p := s.AddItem(req)
	h.finish(w, r, s, p, http.StatusCreated, func() any { return item })
}

// Update handles PUT /api/items/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch syncstore.ItemPatch
	if !decode(w, r, &patch) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	h.finish(w, r, s, s.UpdateItem(id, patch), http.StatusOK, findItem(s, id))
}

// Toggle handles POST /api/items/{id}/toggle
func (h *InventoryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	h.finish(w, r, s, s.ToggleItem(id), http.StatusOK, findItem(s, id))
}

// ToggleSubItem handles POST /api/items/{id}/subitems/{sub}/toggle
func (h *InventoryHandler) ToggleSubItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	h.finish(w, r, s, s.ToggleSubItem(id, r.PathValue("sub")), http.StatusOK, findItem(s, id))
}

// Delete handles DELETE /api/items/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.DeleteItem(r.PathValue("id")), http.StatusNoContent, nil)
}

type batchRequest struct {
	IDs      []string `json:"ids"`
	Acquired bool     `json:"acquired"`
}

// Batch handles POST /api/items/batch
func (h *InventoryHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	n, p := s.SetItemsAcquired(req.IDs, req.Acquired)
	h.finish(w, r, s, p, http.StatusOK, func() any { return map[string]int{"updated": n} })
}
