package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/model"
)

// ErrDocumentNotFound is returned by writes against a user without a document.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore persists each user document as one row per field.
type DocumentStore struct {
	db *database.DB
}

func NewDocumentStore(db *database.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Get returns the user's document, or nil when none exists. Rows for fields
// this build does not know are ignored.
func (s *DocumentStore) Get(ctx context.Context, userID string) (*model.Document, error) {
	patch, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, nil
	}
	var doc model.Document
	if err := doc.Apply(patch); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStore) load(ctx context.Context, userID string) (model.Patch, error) {
	rows, err := s.db.QueryContext(ctx,
		s.db.Rebind(`SELECT field, payload FROM documents WHERE user_id = ?`), userID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	defer rows.Close()

	var patch model.Patch
	for rows.Next() {
		var field model.Field
		var payload string
		if err := rows.Scan(&field, &payload); err != nil {
			return nil, fmt.Errorf("scan document field: %w", err)
		}
		if patch == nil {
			patch = model.Patch{}
		}
		patch[field] = json.RawMessage(payload)
	}
	return patch, rows.Err()
}

// Exists reports whether the user has a document.
func (s *DocumentStore) Exists(ctx context.Context, userID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.db.Rebind(`SELECT COUNT(*) FROM documents WHERE user_id = ?`), userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return n > 0, nil
}

// Create stores every field of doc. Fields that already exist are kept, so
// two devices creating the same document concurrently converge on the first.
func (s *DocumentStore) Create(ctx context.Context, userID string, doc model.Document) error {
	patch, err := doc.FullPatch()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return s.write(ctx, userID, patch,
		`INSERT INTO documents (user_id, field, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, field) DO NOTHING`)
}

// UpdateFields overwrites the given fields of an existing document.
func (s *DocumentStore) UpdateFields(ctx context.Context, userID string, patch model.Patch) error {
	ok, err := s.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDocumentNotFound
	}
	return s.upsert(ctx, userID, patch)
}

// Replace writes every field of doc whether or not a document exists.
func (s *DocumentStore) Replace(ctx context.Context, userID string, doc model.Document) error {
	patch, err := doc.FullPatch()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return s.upsert(ctx, userID, patch)
}

func (s *DocumentStore) upsert(ctx context.Context, userID string, patch model.Patch) error {
	return s.write(ctx, userID, patch,
		`INSERT INTO documents (user_id, field, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, field) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
}

func (s *DocumentStore) write(ctx context.Context, userID string, patch model.Patch, query string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.db.Rebind(query))
	if err != nil {
		return fmt.Errorf("prepare document write: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, f := range patch.Fields() {
		if _, err := stmt.ExecContext(ctx, userID, string(f), string(patch[f]), now); err != nil {
			return fmt.Errorf("write document field %s: %w", f, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document: %w", err)
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM documents WHERE user_id = ?`), userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// ListUserIDs returns every user that owns a document.
func (s *DocumentStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM documents ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list document users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
