package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/moveready/internal/auth"
	"github.com/dukerupert/moveready/internal/backup"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/syncstore"
)

// PassphraseHeader carries the optional export passphrase.
const PassphraseHeader = "X-Export-Passphrase"

// UserLookup resolves the account that owns a document.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// DataHandler serves export, import, reset, onboarding and archives.
type DataHandler struct {
	docs
	users    UserLookup
	archiver *backup.Archiver
}

func NewDataHandler(replicas Replicas, users UserLookup, archiver *backup.Archiver, logger *slog.Logger) *DataHandler {
	return &DataHandler{
		docs:     docs{replicas: replicas, logger: logger.With("component", "data")},
		users:    users,
		archiver: archiver,
	}
}

func (h *DataHandler) export(w http.ResponseWriter, r *http.Request, s *syncstore.Store) ([]byte, bool) {
	user, err := h.users.GetByID(r.Context(), s.UserID())
	if err != nil {
		h.logger.Error("load user for export", "user_id", s.UserID(), "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return nil, false
	}
	data, err := backup.Marshal(backup.Build(s.State(), user, s.Now()))
	if err != nil {
		h.logger.Error("marshal export", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return nil, false
	}
	return data, true
}

// Export handles GET /api/export. The export is encrypted when a
// passphrase header is sent.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	data, ok := h.export(w, r, s)
	if !ok {
		return
	}

	name, ctype := "moveready-export.json", "application/json"
	if pass := r.Header.Get(PassphraseHeader); pass != "" {
		enc, err := backup.Encrypt(data, pass)
		if err != nil {
			h.logger.Error("encrypt export", "error", err)
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		data, name, ctype = enc, "moveready-export.json.enc", "application/octet-stream"
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import handles POST /api/import with a plain or encrypted export as body.
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "import too large")
		return
	}
	plain, err := backup.Open(raw, r.Header.Get(PassphraseHeader))
	if err != nil {
		writeImportError(w, err)
		return
	}
	exp, err := backup.Parse(plain)
	if err != nil {
		writeImportError(w, err)
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.ImportData(exp.Inventory, exp.Roommates), http.StatusOK, func() any { return stateOf(s) })
}

func writeImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backup.ErrWrongPassphrase), errors.Is(err, backup.ErrInvalidBackup):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "import failed")
	}
}

// Reset handles POST /api/reset
func (h *DataHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.Reset(), http.StatusOK, func() any { return stateOf(s) })
}

// Onboard handles POST /api/onboarding
func (h *DataHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req syncstore.Onboarding
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	h.finish(w, r, s, s.Onboard(req), http.StatusOK, func() any { return stateOf(s) })
}

// Archive handles POST /api/archive
func (h *DataHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil || !h.archiver.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "archive storage not configured")
		return
	}
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	data, ok := h.export(w, r, s)
	if !ok {
		return
	}
	key, err := h.archiver.Archive(r.Context(), s.UserID(), data)
	if err != nil {
		h.logger.Error("archive export", "user_id", s.UserID(), "error", err)
		writeError(w, http.StatusBadGateway, "archive upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

// Archives handles GET /api/archives
func (h *DataHandler) Archives(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil || !h.archiver.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "archive storage not configured")
		return
	}
	objs, err := h.archiver.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list archives", "error", err)
		writeError(w, http.StatusBadGateway, "could not list archives")
		return
	}
	if objs == nil {
		objs = []backup.Object{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": h.archiver.Status(), "archives": objs})
}
