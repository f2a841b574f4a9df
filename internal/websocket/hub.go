package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/moveready/internal/catalog"
	"github.com/dukerupert/moveready/internal/model"
)

const (
	TypeDocumentUpdated = "document_updated"
	TypeLevelUp         = "level_up"
	TypeSyncError       = "sync_error"
)

// Message is a change notification pushed to a user's clients.
type Message struct {
	Type    string            `json:"type"`
	Version uint64            `json:"version,omitempty"`
	Level   *catalog.LevelDef `json:"level,omitempty"`
	Fields  []model.Field     `json:"fields,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func DocumentUpdated(version uint64) Message {
	return Message{Type: TypeDocumentUpdated, Version: version}
}

func LevelUp(level catalog.LevelDef) Message {
	return Message{Type: TypeLevelUp, Level: &level}
}

func SyncError(fields []model.Field, err error) Message {
	return Message{Type: TypeSyncError, Fields: fields, Error: err.Error()}
}

// Hub maintains the active WebSocket clients grouped by user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger.With("component", "websocket"),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
}

// Disconnect drops every client of userID and returns how many there were.
// Their connections close once the write pumps see the closed channels.
func (h *Hub) Disconnect(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[userID]
	for c := range set {
		close(c.send)
	}
	delete(h.clients, userID)
	return len(set)
}

// Broadcast sends a message to every client of userID.
func (h *Hub) Broadcast(userID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop message to avoid blocking
			h.logger.Debug("dropped message", "user_id", userID, "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// UserClientCount returns the number of clients connected for userID.
func (h *Hub) UserClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
