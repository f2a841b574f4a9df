package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/moveready/internal/store"
)

// StoreSource exports documents straight from the database.
type StoreSource struct {
	Docs  *store.DocumentStore
	Users *store.UserStore
}

func (s StoreSource) ListUserIDs(ctx context.Context) ([]string, error) {
	return s.Docs.ListUserIDs(ctx)
}

func (s StoreSource) Export(ctx context.Context, userID string) ([]byte, error) {
	doc, err := s.Docs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("export %s: %w", userID, store.ErrDocumentNotFound)
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Marshal(Build(*doc, user, time.Now()))
}
