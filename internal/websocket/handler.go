package websocket

import (
	"context"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/moveready/internal/auth"
)

// HandleWebSocket returns an HTTP handler that upgrades authenticated
// connections and runs them as Hub clients. onConnect runs before the
// upgrade; an error rejects the connection. Empty origins accepts any.
func HandleWebSocket(hub *Hub, origins []string, onConnect func(ctx context.Context, userID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if onConnect != nil {
			if err := onConnect(r.Context(), userID); err != nil {
				hub.logger.Error("websocket connect", "user_id", userID, "error", err)
				http.Error(w, "could not open document", http.StatusInternalServerError)
				return
			}
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: len(origins) == 0,
			OriginPatterns:     origins,
		})
		if err != nil {
			hub.logger.Warn("accept", "error", err)
			return
		}

		client := NewClient(hub, conn, userID)
		client.Run(r.Context())
	}
}
