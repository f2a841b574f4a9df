package store

import (
	"context"
	"testing"

	"github.com/dukerupert/moveready/internal/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	return NewUserStore(setupTestDB(t))
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create(context.Background(), " Alice@Example.com ", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
	if u.PasswordHash != "hash" {
		t.Errorf("password hash = %q, want %q", u.PasswordHash, "hash")
	}
	if u.ID == "" {
		t.Error("expected non-empty ID")
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)
	ctx := context.Background()

	if _, err := us.Create(ctx, "alice@example.com", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create(ctx, "ALICE@example.com", "h2"); err == nil {
		t.Fatal("expected error for duplicate email, got nil")
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserGetByEmail(t *testing.T) {
	us := setupUserTestDB(t)
	ctx := context.Background()

	created, err := us.Create(ctx, "alice@example.com", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := us.GetByEmail(ctx, "Alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.ID != created.ID {
		t.Errorf("id = %q, want %q", u.ID, created.ID)
	}

	u, err = us.GetByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent email")
	}
}

func TestUserLinkOAuth(t *testing.T) {
	us := setupUserTestDB(t)
	ctx := context.Background()

	created, err := us.Create(ctx, "alice@example.com", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := us.LinkOAuth(ctx, created.ID, "google|42"); err != nil {
		t.Fatalf("link oauth: %v", err)
	}

	u, err := us.GetByOAuthSubject(ctx, "google|42")
	if err != nil {
		t.Fatalf("get by oauth subject: %v", err)
	}
	if u == nil || u.ID != created.ID {
		t.Fatalf("user = %+v, want id %q", u, created.ID)
	}
	if u.OAuthSubject != "google|42" {
		t.Errorf("oauth subject = %q, want %q", u.OAuthSubject, "google|42")
	}
}

func TestUserDelete(t *testing.T) {
	us := setupUserTestDB(t)
	ctx := context.Background()

	created, err := us.Create(ctx, "alice@example.com", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := us.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	u, err := us.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if u != nil {
		t.Error("expected nil after delete")
	}
}
