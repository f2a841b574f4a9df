// Package backup writes and reads data exports, optionally encrypted with a
// passphrase, and archives them to S3-compatible storage.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/moveready/internal/calc"
	"github.com/dukerupert/moveready/internal/model"
)

// Version tags every export this build writes.
const Version = "gold-2.1"

// ErrInvalidBackup is returned for exports that cannot be imported.
var ErrInvalidBackup = errors.New("invalid backup")

type ExportUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type Gamification struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// Export is a point-in-time dump of a user's inventory. Chat history is
// carried through untouched.
type Export struct {
	Version      string            `json:"version"`
	Timestamp    time.Time         `json:"timestamp"`
	User         *ExportUser       `json:"user,omitempty"`
	Roommates    []string          `json:"roommates"`
	Gamification Gamification      `json:"gamification"`
	Inventory    []model.Item      `json:"inventory"`
	ChatHistory  []json.RawMessage `json:"chatHistory"`
}

// Build exports doc. user may be nil.
func Build(doc model.Document, user *model.User, now time.Time) Export {
	xp := calc.XP(doc.Inventory)
	e := Export{
		Version:      Version,
		Timestamp:    now.UTC(),
		Roommates:    doc.Roommates,
		Gamification: Gamification{XP: xp, Level: calc.LevelFor(xp).Level},
		Inventory:    model.CloneItems(doc.Inventory),
		ChatHistory:  []json.RawMessage{},
	}
	if user != nil {
		e.User = &ExportUser{ID: user.ID, Email: user.Email}
	}
	if e.Roommates == nil {
		e.Roommates = []string{}
	}
	if e.Inventory == nil {
		e.Inventory = []model.Item{}
	}
	return e
}

// Marshal encodes e as indented JSON.
func Marshal(e Export) ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// Parse reads an export. Every field is optional except the inventory;
// any decoding problem fails the whole import. A nil Roommates means the
// export carried none.
func Parse(data []byte) (*Export, error) {
	var raw struct {
		Version      string            `json:"version"`
		Timestamp    json.RawMessage   `json:"timestamp"`
		User         *ExportUser       `json:"user"`
		Roommates    []string          `json:"roommates"`
		Gamification *Gamification     `json:"gamification"`
		Inventory    []model.Item      `json:"inventory"`
		ChatHistory  []json.RawMessage `json:"chatHistory"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if raw.Inventory == nil {
		return nil, fmt.Errorf("%w: no inventory", ErrInvalidBackup)
	}
	for i := range raw.Inventory {
		it := &raw.Inventory[i]
		if it.ID == "" {
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalidBackup, i)
		}
		if it.Category == "" {
			it.Category = model.CategoryTools
		}
		if it.Store == "" {
			it.Store = model.StoreSupermarket
		}
	}
	e := &Export{
		Version:     raw.Version,
		User:        raw.User,
		Roommates:   raw.Roommates,
		Inventory:   raw.Inventory,
		ChatHistory: raw.ChatHistory,
	}
	if raw.Gamification != nil {
		e.Gamification = *raw.Gamification
	}
	// older exports used other timestamp formats; an unreadable one is kept zero
	var ts string
	if json.Unmarshal(raw.Timestamp, &ts) == nil {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = t
		}
	}
	return e, nil
}
