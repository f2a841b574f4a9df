package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/moveready/internal/bridge"
)

// ToolHandler exposes the agent tool bridge over HTTP.
type ToolHandler struct {
	docs
}

func NewToolHandler(replicas Replicas, logger *slog.Logger) *ToolHandler {
	return &ToolHandler{docs{replicas: replicas, logger: logger.With("component", "tools")}}
}

// List handles GET /api/tools
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bridge.Definitions())
}

// Call handles POST /api/tools/{name}. Tool failures are reported in the
// payload with status 200.
func (h *ToolHandler) Call(w http.ResponseWriter, r *http.Request) {
	args, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	out := bridge.New(s, h.logger).Call(r.Context(), r.PathValue("name"), args)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
