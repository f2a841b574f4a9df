// Package auth implements the identity provider: password and OAuth
// sign-in, HS256 session tokens and auth-state notifications.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

const MinPasswordLength = 6

// Config holds identity settings.
type Config struct {
	JWTSecret        string        `mapstructure:"jwt_secret"`
	TokenTTL         time.Duration `mapstructure:"token_ttl"`
	OAuthProxySecret string        `mapstructure:"oauth_proxy_secret"`
}

// EventType names an auth-state transition.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

type AuthEvent struct {
	Type   EventType
	UserID string
}

// OAuthIdentity is the verified identity forwarded by the OAuth proxy.
type OAuthIdentity struct {
	Subject string
	Email   string
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

type Provider struct {
	users  *store.UserStore
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
	cost   int

	mu        sync.Mutex
	listeners map[int]func(AuthEvent)
	nextID    int
}

func NewProvider(users *store.UserStore, cfg Config, logger *slog.Logger) *Provider {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		users:     users,
		cfg:       cfg,
		logger:    logger.With("component", "auth"),
		now:       time.Now,
		cost:      bcrypt.DefaultCost,
		listeners: make(map[int]func(AuthEvent)),
	}
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return at > 0 && strings.Contains(email[at:], ".")
}

func (p *Provider) issue(u *model.User) (*Session, error) {
	token, exp, err := IssueToken(u.ID, u.Email, p.cfg.JWTSecret, p.cfg.TokenTTL, p.now())
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	p.emit(AuthEvent{Type: EventSignedIn, UserID: u.ID})
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Register creates a password account and signs it in.
func (p *Provider) Register(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}
	existing, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := p.users.Create(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}
	p.logger.Info("user registered", "user_id", u.ID)
	return p.issue(u)
}

// SignIn checks a password and returns a session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.issue(u)
}

// SignInWithOAuth signs in by OAuth subject, linking an existing account
// with the same email or creating a new one.
func (p *Provider) SignInWithOAuth(ctx context.Context, id OAuthIdentity) (*Session, error) {
	if id.Subject == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := p.users.GetByOAuthSubject(ctx, id.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		email := strings.ToLower(strings.TrimSpace(id.Email))
		if !validEmail(email) {
			return nil, ErrInvalidEmail
		}
		u, err = p.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if u == nil {
			if u, err = p.users.Create(ctx, email, ""); err != nil {
				return nil, err
			}
			p.logger.Info("user registered", "user_id", u.ID, "oauth", true)
		}
		if err := p.users.LinkOAuth(ctx, u.ID, id.Subject); err != nil {
			return nil, err
		}
		u.OAuthSubject = id.Subject
	}
	return p.issue(u)
}

// SignOut notifies listeners that the user signed out. Tokens are
// stateless and stay valid until they expire.
func (p *Provider) SignOut(_ context.Context, userID string) {
	if userID == "" {
		return
	}
	p.emit(AuthEvent{Type: EventSignedOut, UserID: userID})
}

// Verify validates a session token and returns the auth context it carries.
func (p *Provider) Verify(token string) (AuthContext, error) {
	claims, err := ParseToken(token, p.cfg.JWTSecret)
	if err != nil {
		return AuthContext{}, err
	}
	return AuthContext{UserID: claims.Subject, Email: claims.Email}, nil
}

// TrustsProxy reports whether secret matches the configured OAuth proxy
// secret. An unset secret trusts nobody.
func (p *Provider) TrustsProxy(secret string) bool {
	if p.cfg.OAuthProxySecret == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(p.cfg.OAuthProxySecret)) == 1
}

// OnAuthStateChanged registers fn for every sign-in and sign-out. Listeners
// run synchronously on the signing goroutine.
func (p *Provider) OnAuthStateChanged(fn func(AuthEvent)) (cancel func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) emit(ev AuthEvent) {
	p.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
