package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/moveready/internal/calc"
	"github.com/dukerupert/moveready/internal/calendar"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/syncstore"
)

// AdminHandler serves the paperwork timeline.
type AdminHandler struct {
	docs
}

func NewAdminHandler(replicas Replicas, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{docs{replicas: replicas, logger: logger}}
}

func classified(s *syncstore.Store) func() any {
	return func() any {
		doc := s.State()
		return calc.ClassifyTasks(doc.AdminTasks, doc.MovingDate, s.Now())
	}
}

// List handles GET /api/admin-tasks
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, classified(s)())
}

// Toggle handles POST /api/admin-tasks/{id}/toggle
func (h *AdminHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.ToggleAdminTask(r.PathValue("id")), http.StatusOK, classified(s))
}

// SetDate handles PUT /api/admin-tasks/{id}/date. An empty date clears the
// manual deadline.
func (h *AdminHandler) SetDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.SetAdminTaskDate(r.PathValue("id"), req.Date), http.StatusOK, classified(s))
}

// SetStatus handles PUT /api/admin-tasks/{id}/status
func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.TaskStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.SetAdminTaskStatus(r.PathValue("id"), req.Status), http.StatusOK, classified(s))
}

// Calendar handles GET /api/admin-tasks/calendar.ics
func (h *AdminHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="moving-deadlines.ics"`)
	w.Write(calendar.Export(s.State(), s.Now()))
}
