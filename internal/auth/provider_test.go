package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/store"
)

func setupProvider(t *testing.T) (*Provider, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	users := store.NewUserStore(db)
	p := NewProvider(users, Config{JWTSecret: "test-secret", OAuthProxySecret: "proxy"}, nil)
	p.cost = bcrypt.MinCost
	return p, users
}

func TestRegisterAndSignIn(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	sess, err := p.Register(ctx, "Alice@Example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sess.User.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", sess.User.Email, "alice@example.com")
	}

	ac, err := p.Verify(sess.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ac.UserID != sess.User.ID {
		t.Errorf("UserID = %q, want %q", ac.UserID, sess.User.ID)
	}

	again, err := p.SignIn(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if again.User.ID != sess.User.ID {
		t.Errorf("signed in as %q, want %q", again.User.ID, sess.User.ID)
	}
}

func TestRegisterErrors(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	if _, err := p.Register(ctx, "taken@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"bad email", "not-an-email", "secret1", ErrInvalidEmail},
		{"no domain dot", "bob@localhost", "secret1", ErrInvalidEmail},
		{"short password", "bob@example.com", "12345", ErrWeakPassword},
		{"taken", "TAKEN@example.com", "secret1", ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Register(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSignInWrongPassword(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()
	p.Register(ctx, "alice@example.com", "secret1")

	if _, err := p.SignIn(ctx, "alice@example.com", "wrong!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, err := p.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestSignInWithOAuthLinksExistingEmail(t *testing.T) {
	p, users := setupProvider(t)
	ctx := context.Background()

	reg, _ := p.Register(ctx, "alice@example.com", "secret1")
	sess, err := p.SignInWithOAuth(ctx, OAuthIdentity{Subject: "google|1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("oauth sign in: %v", err)
	}
	if sess.User.ID != reg.User.ID {
		t.Errorf("oauth user = %q, want linked %q", sess.User.ID, reg.User.ID)
	}

	u, _ := users.GetByOAuthSubject(ctx, "google|1")
	if u == nil || u.ID != reg.User.ID {
		t.Fatalf("subject not linked: %+v", u)
	}

	// subject wins over a changed email
	again, err := p.SignInWithOAuth(ctx, OAuthIdentity{Subject: "google|1", Email: "other@example.com"})
	if err != nil {
		t.Fatalf("second oauth sign in: %v", err)
	}
	if again.User.ID != reg.User.ID {
		t.Errorf("second oauth user = %q, want %q", again.User.ID, reg.User.ID)
	}
}

func TestSignInWithOAuthCreatesUser(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	sess, err := p.SignInWithOAuth(ctx, OAuthIdentity{Subject: "gh|9", Email: "new@example.com"})
	if err != nil {
		t.Fatalf("oauth sign in: %v", err)
	}
	if sess.User.Email != "new@example.com" {
		t.Errorf("email = %q", sess.User.Email)
	}
	// no password set, so password sign-in fails
	if _, err := p.SignIn(ctx, "new@example.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, err := p.SignInWithOAuth(ctx, OAuthIdentity{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty subject err = %v", err)
	}
}

func TestAuthStateListeners(t *testing.T) {
	p, _ := setupProvider(t)
	ctx := context.Background()

	var mu sync.Mutex
	var events []AuthEvent
	cancel := p.OnAuthStateChanged(func(ev AuthEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	sess, _ := p.Register(ctx, "alice@example.com", "secret1")
	p.SignOut(ctx, sess.User.ID)
	cancel()
	p.SignOut(ctx, sess.User.ID)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Type != EventSignedIn || events[1].Type != EventSignedOut {
		t.Errorf("events = %+v", events)
	}
	if events[1].UserID != sess.User.ID {
		t.Errorf("sign-out user = %q, want %q", events[1].UserID, sess.User.ID)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	p, _ := setupProvider(t)

	if _, err := p.Verify("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage err = %v", err)
	}

	foreign, _, _ := IssueToken("u1", "", "other-secret", time.Hour, time.Now())
	if _, err := p.Verify(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign err = %v", err)
	}

	expired, _, _ := IssueToken("u1", "", "test-secret", time.Hour, time.Now().Add(-2*time.Hour))
	if _, err := p.Verify(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired err = %v", err)
	}
}

func TestTrustsProxy(t *testing.T) {
	p, _ := setupProvider(t)
	if !p.TrustsProxy("proxy") {
		t.Error("expected configured secret to be trusted")
	}
	if p.TrustsProxy("nope") || p.TrustsProxy("") {
		t.Error("expected other secrets to be rejected")
	}
}
