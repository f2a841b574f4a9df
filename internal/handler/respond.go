// Package handler serves the JSON API over a user's synchronized store.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/moveready/internal/auth"
	"github.com/dukerupert/moveready/internal/syncstore"
)

// maxBody bounds request bodies; imports are the largest.
const maxBody = 8 << 20

// Replicas hands out the running store of a user.
type Replicas interface {
	Get(ctx context.Context, userID string) (*syncstore.Store, error)
	Track(userID string, p *syncstore.Pending)
}

// docs is embedded by every handler that works on the user's document.
type docs struct {
	replicas Replicas
	logger   *slog.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// store returns the caller's store, writing the error response on failure.
func (d *docs) store(w http.ResponseWriter, r *http.Request) (*syncstore.Store, bool) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	s, err := d.replicas.Get(r.Context(), userID)
	if err != nil {
		d.logger.Error("open document", "user_id", userID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "document unavailable")
		return nil, false
	}
	return s, true
}

// finish answers a mutation. Rejected mutations are 400. With ?wait=true
// the response waits for replication and reports a failed write as 502;
// otherwise the optimistic result is returned at once and failures reach
// the user's WebSocket clients.
func (d *docs) finish(w http.ResponseWriter, r *http.Request, s *syncstore.Store, p *syncstore.Pending, status int, body func() any) {
	select {
	case <-p.Done():
		if err := p.Err(); err != nil && !isSyncError(err) {
			d.writeMutationError(w, err)
			return
		}
	default:
	}

	if r.URL.Query().Get("wait") == "true" {
		if _, err := p.Wait(r.Context()); err != nil {
			d.writeMutationError(w, err)
			return
		}
	} else {
		d.replicas.Track(s.UserID(), p)
	}

	if body == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, body())
}

func isSyncError(err error) bool {
	var serr *syncstore.SyncError
	return errors.As(err, &serr)
}

func (d *docs) writeMutationError(w http.ResponseWriter, err error) {
	var serr *syncstore.SyncError
	switch {
	case errors.As(err, &serr):
		d.logger.Warn("replication failed", "error", err)
		writeError(w, http.StatusBadGateway, serr.Error())
	case errors.Is(err, syncstore.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, syncstore.ErrStopped), errors.Is(err, syncstore.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "document unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request cancelled before replication finished")
	default:
		d.logger.Error("mutation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "mutation failed")
	}
}
