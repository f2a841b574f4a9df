// Package replica keeps one synchronized store per signed-in user and
// forwards its changes to the user's WebSocket clients.
package replica

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dukerupert/moveready/internal/auth"
	"github.com/dukerupert/moveready/internal/calc"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/syncstore"
	"github.com/dukerupert/moveready/internal/websocket"
)

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("replica manager closed")

// Broadcaster delivers notifications to a user's clients.
type Broadcaster interface {
	Broadcast(userID string, msg websocket.Message)
	Disconnect(userID string) int
}

type replica struct {
	store *syncstore.Store
	ready chan struct{}
	err   error
	unsub func()
}

type Manager struct {
	ctx    context.Context
	remote syncstore.Remote
	hub    Broadcaster
	logger *slog.Logger
	opts   []syncstore.Option

	mu       sync.Mutex
	replicas map[string]*replica
	closed   bool
	wg       sync.WaitGroup
}

// NewManager creates a manager whose stores live as long as ctx. opts are
// passed to every store.
func NewManager(ctx context.Context, remote syncstore.Remote, hub Broadcaster, logger *slog.Logger, opts ...syncstore.Option) *Manager {
	return &Manager{
		ctx:      context.WithoutCancel(ctx),
		remote:   remote,
		hub:      hub,
		logger:   logger.With("component", "replica"),
		opts:     append(opts, syncstore.WithLogger(logger)),
		replicas: make(map[string]*replica),
	}
}

// Get returns the running store of userID, starting it on first use.
// Concurrent callers share one start.
func (m *Manager) Get(ctx context.Context, userID string) (*syncstore.Store, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	r, ok := m.replicas[userID]
	if !ok {
		r = &replica{ready: make(chan struct{})}
		m.replicas[userID] = r
		m.mu.Unlock()
		m.start(userID, r)
	} else {
		m.mu.Unlock()
	}

	select {
	case <-r.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.store, nil
}

func (m *Manager) start(userID string, r *replica) {
	defer close(r.ready)

	s := syncstore.New(userID, m.remote, m.opts...)
	var watcher calc.LevelWatcher
	r.unsub = s.Subscribe(func(doc model.Document) {
		if lvl, up := watcher.Observe(calc.XP(doc.Inventory)); up {
			m.logger.Info("level up", "user_id", userID, "level", lvl.Level)
			m.hub.Broadcast(userID, websocket.LevelUp(lvl))
		}
		m.hub.Broadcast(userID, websocket.DocumentUpdated(s.Version()))
	})

	if err := s.Start(m.ctx); err != nil {
		r.unsub()
		r.err = err
		m.mu.Lock()
		if m.replicas[userID] == r {
			delete(m.replicas, userID)
		}
		m.mu.Unlock()
		m.logger.Error("start replica", "user_id", userID, "error", err)
		return
	}
	r.store = s
}

// Track reports a failed write of userID to the user's clients.
func (m *Manager) Track(userID string, p *syncstore.Pending) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		<-p.Done()
		var serr *syncstore.SyncError
		if errors.As(p.Err(), &serr) {
			m.hub.Broadcast(userID, websocket.SyncError(serr.Fields, serr.Err))
		}
	}()
}

// Release stops the store of userID, if any.
func (m *Manager) Release(userID string) {
	m.mu.Lock()
	r, ok := m.replicas[userID]
	if ok {
		delete(m.replicas, userID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	<-r.ready
	if r.store != nil {
		r.unsub()
		r.store.Stop()
		m.logger.Info("replica released", "user_id", userID)
	}
}

// Active returns the running stores.
func (m *Manager) Active() []*syncstore.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*syncstore.Store, 0, len(m.replicas))
	for _, r := range m.replicas {
		select {
		case <-r.ready:
			if r.store != nil {
				out = append(out, r.store)
			}
		default:
		}
	}
	return out
}

// Len returns the number of replicas, including ones still starting.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.replicas)
}

// Attach releases a user's store and closes their sockets when they sign out.
func (m *Manager) Attach(p *auth.Provider) (cancel func()) {
	return p.OnAuthStateChanged(func(ev auth.AuthEvent) {
		if ev.Type == auth.EventSignedOut {
			if n := m.hub.Disconnect(ev.UserID); n > 0 {
				m.logger.Info("closed sockets on sign-out", "user_id", ev.UserID, "clients", n)
			}
			m.Release(ev.UserID)
		}
	})
}

// Close stops every store and waits for their queued writes.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	rs := m.replicas
	m.replicas = make(map[string]*replica)
	m.mu.Unlock()

	for _, r := range rs {
		<-r.ready
		if r.store != nil {
			r.unsub()
			r.store.Stop()
			<-r.store.Done()
		}
	}
	m.wg.Wait()
}
