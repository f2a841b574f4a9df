package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/moveready/internal/grocery"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/syncstore"
)

type GroceryHandler struct {
	docs
}

func NewGroceryHandler(replicas Replicas, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{docs{replicas: replicas, logger: logger}}
}

type groceryItemRequest struct {
	Name     string                `json:"name"`
	Quantity float64               `json:"quantity"`
	Unit     string                `json:"unit"`
	Category model.GroceryCategory `json:"category"`
}

func groceries(s *syncstore.Store) func() any {
	return func() any { return s.State().DailyGroceries }
}

// Create handles POST /api/groceries
func (h *GroceryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groceryItemRequest
	if !decode(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	// Auto-categorize if no category provided
	item, p := s.AddGrocery(model.DailyGroceryItem{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Category: grocery.Resolve(req.Name, req.Category),
	})
	h.finish(w, r, s, p, http.StatusCreated, func() any { return item })
}

// Update handles PUT /api/groceries/{id}
func (h *GroceryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch syncstore.GroceryPatch
	if !decode(w, r, &patch) {
		return
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		patch.Name = &name
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.UpdateGrocery(r.PathValue("id"), patch), http.StatusOK, groceries(s))
}

// Toggle handles POST /api/groceries/{id}/toggle
func (h *GroceryHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.ToggleGrocery(r.PathValue("id")), http.StatusOK, groceries(s))
}

// Favorite handles POST /api/groceries/{id}/favorite
func (h *GroceryHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.ToggleGroceryFavorite(r.PathValue("id")), http.StatusOK, groceries(s))
}

// Delete handles DELETE /api/groceries/{id}
func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.DeleteGrocery(r.PathValue("id")), http.StatusNoContent, nil)
}

// ClearChecked handles POST /api/groceries/clear-checked
func (h *GroceryHandler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.ClearCheckedGroceries(), http.StatusOK, groceries(s))
}
