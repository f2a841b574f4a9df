package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/model"
)

type UserStore struct {
	db *database.DB
}

func NewUserStore(db *database.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var subject sql.NullString
	err := scanner.Scan(&u.ID, &u.Email, &u.PasswordHash, &subject, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.OAuthSubject = subject.String
	return &u, nil
}

const userCols = `id, email, password_hash, oauth_subject, created_at`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user with a fresh id. passwordHash may be empty for
// accounts that only sign in through OAuth.
func (s *UserStore) Create(ctx context.Context, email, passwordHash string) (*model.User, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`),
		id, normalizeEmail(email), passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) get(ctx context.Context, where string, arg any) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT `+userCols+` FROM users WHERE `+where+` = ?`), arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.get(ctx, "id", id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.get(ctx, "email", normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByOAuthSubject(ctx context.Context, subject string) (*model.User, error) {
	u, err := s.get(ctx, "oauth_subject", subject)
	if err != nil {
		return nil, fmt.Errorf("get user by oauth subject: %w", err)
	}
	return u, nil
}

// LinkOAuth attaches an OAuth subject to an existing user.
func (s *UserStore) LinkOAuth(ctx context.Context, id, subject string) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE users SET oauth_subject = ? WHERE id = ?`), subject, id)
	if err != nil {
		return fmt.Errorf("link oauth subject: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
