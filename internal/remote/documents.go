// Package remote is the server-side copy of the user documents: SQL rows
// for persistence and a pub/sub channel per user for change notifications.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/pubsub"
	"github.com/dukerupert/moveready/internal/store"
)

// Channel returns the pub/sub channel carrying changes of a user's document.
func Channel(userID string) string {
	return "doc:" + userID
}

// Documents implements syncstore.Remote.
type Documents struct {
	store  *store.DocumentStore
	ps     pubsub.PubSub
	logger *slog.Logger
}

func New(docs *store.DocumentStore, ps pubsub.PubSub, logger *slog.Logger) *Documents {
	if logger == nil {
		logger = slog.Default()
	}
	return &Documents{store: docs, ps: ps, logger: logger.With("component", "remote")}
}

func (d *Documents) Load(ctx context.Context, userID string) (*model.Document, error) {
	doc, err := d.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

func (d *Documents) Create(ctx context.Context, userID string, doc model.Document) error {
	if err := d.store.Create(ctx, userID, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Write persists patch and then publishes it. The write counts as done once
// persisted; a failed publish is only logged.
func (d *Documents) Write(ctx context.Context, userID, origin string, patch model.Patch) error {
	if err := d.store.UpdateFields(ctx, userID, patch); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	d.publish(ctx, model.Change{UserID: userID, Origin: origin, Patch: patch, At: time.Now().UTC()})
	return nil
}

// Replace overwrites the whole document and announces it as one change
// with no origin, so every store adopts it.
func (d *Documents) Replace(ctx context.Context, userID string, doc model.Document) error {
	if err := d.store.Replace(ctx, userID, doc); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	patch, err := doc.FullPatch()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	d.publish(ctx, model.Change{UserID: userID, Patch: patch, At: time.Now().UTC()})
	return nil
}

func (d *Documents) publish(ctx context.Context, c model.Change) {
	payload, err := json.Marshal(c)
	if err != nil {
		d.logger.Error("encode change", "user_id", c.UserID, "error", err)
		return
	}
	if err := d.ps.Publish(ctx, Channel(c.UserID), string(payload)); err != nil {
		d.logger.Error("publish change", "user_id", c.UserID, "error", err)
	}
}

// Watch subscribes to the user's channel. Undecodable messages are logged
// and skipped. cancel closes the returned channel.
func (d *Documents) Watch(ctx context.Context, userID string) (<-chan model.Change, func(), error) {
	msgs, unsubscribe, err := d.ps.Subscribe(ctx, Channel(userID))
	if err != nil {
		return nil, nil, fmt.Errorf("watch document: %w", err)
	}
	out := make(chan model.Change)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for msg := range msgs {
			var c model.Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				d.logger.Warn("decode change", "user_id", userID, "error", err)
				continue
			}
			select {
			case out <- c:
			case <-done:
				// drain until unsubscribe closes msgs
			}
		}
	}()
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			unsubscribe()
		})
	}
	return out, cancel, nil
}
