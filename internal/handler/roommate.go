package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/moveready/internal/syncstore"
)

type RoommateHandler struct {
	docs
}

func NewRoommateHandler(replicas Replicas, logger *slog.Logger) *RoommateHandler {
	return &RoommateHandler{docs{replicas: replicas, logger: logger}}
}

func roommates(s *syncstore.Store) func() any {
	return func() any {
		if rs := s.State().Roommates; rs != nil {
			return rs
		}
		return []string{}
	}
}

// List handles GET /api/roommates
func (h *RoommateHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, roommates(s)())
}

// Add handles POST /api/roommates
func (h *RoommateHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.AddRoommate(req.Name), http.StatusOK, roommates(s))
}

// Remove handles DELETE /api/roommates/{name}
func (h *RoommateHandler) Remove(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.RemoveRoommate(r.PathValue("name")), http.StatusOK, roommates(s))
}
