package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/moveready/internal/auth"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/push"
	"github.com/dukerupert/moveready/internal/store"
)

type PushHandler struct {
	pushStore *store.PushStore
	sender    push.Sender
	publicKey string
	logger    *slog.Logger
}

// NewPushHandler creates the handler. sender may be nil when VAPID keys are
// not configured.
func NewPushHandler(ps *store.PushStore, sender push.Sender, publicKey string, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, sender: sender, publicKey: publicKey, logger: logger.With("component", "push")}
}

// subscribeRequest accepts both a browser PushSubscription.toJSON() body and
// flat key fields.
type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
	P256dh     string `json:"p256dh"`
	Auth       string `json:"auth"`
	DeviceName string `json:"deviceName"`
}

// GetVAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.publicKey == "" {
		writeError(w, http.StatusServiceUnavailable, "push notifications not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": h.publicKey})
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req subscribeRequest
	if !decode(w, r, &req) {
		return
	}
	p256dh, authKey := req.Keys.P256dh, req.Keys.Auth
	if p256dh == "" {
		p256dh = req.P256dh
	}
	if authKey == "" {
		authKey = req.Auth
	}
	if req.Endpoint == "" || p256dh == "" || authKey == "" {
		writeError(w, http.StatusBadRequest, "endpoint, p256dh, and auth are required")
		return
	}

	sub, err := h.pushStore.CreateSubscription(r.Context(), userID, req.Endpoint, p256dh, authKey, req.DeviceName)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe handles POST /api/push/unsubscribe
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}
	if err := h.pushStore.DeleteUserEndpoint(r.Context(), auth.UserID(r.Context()), req.Endpoint); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /api/push/subscriptions
func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.pushStore.ListByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// TestNotification handles POST /api/push/test
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		writeError(w, http.StatusServiceUnavailable, "push notifications not configured")
		return
	}
	subs, err := h.pushStore.ListByUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}

	payload := push.Payload{Title: "MoveReady", Body: "Notifications are working.", Tag: "test"}
	sent := 0
	for i := range subs {
		err := h.sender.Send(r.Context(), &subs[i], payload)
		if errors.Is(err, push.ErrExpired) {
			h.pushStore.DeleteByEndpoint(r.Context(), subs[i].Endpoint)
			continue
		}
		if err != nil {
			h.logger.Warn("test notification", "endpoint", subs[i].Endpoint, "error", err)
			continue
		}
		sent++
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
