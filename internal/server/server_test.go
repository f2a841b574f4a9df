package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/moveready/internal/auth"
	"github.com/dukerupert/moveready/internal/config"
	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/pubsub"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.JWTSecret = "test-secret"
	cfg.RateLimit.Burst = 100

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(context.Background(), db, pubsub.NewLocal(64), cfg, logger)
	require.NoError(t, err)
	srv.Start(context.Background())
	t.Cleanup(srv.Shutdown)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func request(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNewRequiresSecret(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	_, err = New(context.Background(), nil, pubsub.NewLocal(1), cfg, slog.Default())
	assert.ErrorIs(t, err, ErrNoJWTSecret)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp := request(t, http.MethodGet, ts.URL+"/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, http.MethodGet, ts.URL+"/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "moveready_http_requests_total")
	assert.Contains(t, string(body), "moveready_active_documents")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t)
	resp := request(t, http.MethodGet, ts.URL+"/api/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = request(t, http.MethodGet, ts.URL+"/api/state", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterThenUseDocument(t *testing.T) {
	ts := newTestServer(t)

	resp := request(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"email": "sam@example.com", "password": "moving-day",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sess auth.Session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))

	resp = request(t, http.MethodPost, ts.URL+"/api/roommates?wait=true", sess.Token, map[string]string{"name": "Noa"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, http.MethodGet, ts.URL+"/api/state", sess.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state struct {
		Document struct {
			Roommates []string `json:"roommates"`
		} `json:"document"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, []string{"Noa"}, state.Document.Roommates)

	resp = request(t, http.MethodGet, ts.URL+"/api/admin-tasks/calendar.ics", sess.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar"))

	resp = request(t, http.MethodPost, ts.URL+"/api/auth/logout", sess.Token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
