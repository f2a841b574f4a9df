package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/moveready/internal/auth"
)

// Headers set by a trusted OAuth proxy in front of the server.
const (
	HeaderProxySecret = "X-Auth-Proxy-Secret"
	HeaderSubject     = "X-Auth-Subject"
	HeaderEmail       = "X-Auth-Email"
)

type AuthHandler struct {
	provider *auth.Provider
	logger   *slog.Logger
}

func NewAuthHandler(provider *auth.Provider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, logger: logger.With("component", "auth")}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.provider.Register(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("register", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	sess, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// OAuth handles POST /api/auth/oauth. The identity comes from headers set
// by the authenticating proxy, which proves itself with the shared secret.
func (h *AuthHandler) OAuth(w http.ResponseWriter, r *http.Request) {
	if !h.provider.TrustsProxy(r.Header.Get(HeaderProxySecret)) {
		writeError(w, http.StatusForbidden, "untrusted identity proxy")
		return
	}
	sess, err := h.provider.SignInWithOAuth(r.Context(), auth.OAuthIdentity{
		Subject: r.Header.Get(HeaderSubject),
		Email:   r.Header.Get(HeaderEmail),
	})
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("oauth sign-in", "error", err)
		writeError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.provider.SignOut(r.Context(), auth.UserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": ac.UserID, "email": ac.Email})
}
