// Package syncstore keeps an in-memory copy of a user's document and
// replicates it to a Remote.
//
// Mutations apply to the local copy synchronously and return a *Pending for
// the remote write. Writes run on a single goroutine in issue order and are
// never cancelled. Changes made by other writers arrive through Remote.Watch
// and are merged field by field through a ConflictPolicy.
package syncstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/moveready/internal/catalog"
	"github.com/dukerupert/moveready/internal/model"
)

// Remote is the shared, persisted copy of the documents.
type Remote interface {
	// Load returns nil when the user has no document yet.
	Load(ctx context.Context, userID string) (*model.Document, error)
	// Create stores doc unless a document already exists.
	Create(ctx context.Context, userID string, doc model.Document) error
	// Write overwrites the patched fields and notifies watchers.
	Write(ctx context.Context, userID, origin string, patch model.Patch) error
	// Watch delivers every change written for the user until cancel is
	// called, which closes the channel.
	Watch(ctx context.Context, userID string) (<-chan model.Change, func(), error)
}

type lifecycle int

const (
	stateNew lifecycle = iota
	stateStarting
	stateRunning
	stateStopped
)

type job struct {
	patch   model.Patch
	pending *Pending
}

type subscription struct {
	id int
	fn func(model.Document)
}

// Store is the synchronized document of one user.
type Store struct {
	userID   string
	origin   string
	remote   Remote
	logger   *slog.Logger
	policy   ConflictPolicy
	now      func() time.Time
	metrics  *Metrics
	defaults func() model.Document

	mu          sync.Mutex
	cond        *sync.Cond
	state       lifecycle
	ctx         context.Context
	doc         model.Document
	version     uint64
	status      map[model.Field]FieldStatus
	inflight    map[model.Field]int
	conflicted  map[model.Field]bool
	jobs        []job
	subs        []subscription
	nextSub     int
	cancelWatch func()

	// delivers subscriber notifications in version order
	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	notified   uint64

	done     chan struct{}
	doneOnce sync.Once
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithPolicy(p ConflictPolicy) Option {
	return func(s *Store) { s.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithDefaults sets the document created for a user who has none.
func WithDefaults(fn func() model.Document) Option {
	return func(s *Store) { s.defaults = fn }
}

func New(userID string, remote Remote, opts ...Option) *Store {
	s := &Store{
		userID:     userID,
		origin:     uuid.NewString(),
		remote:     remote,
		logger:     slog.Default(),
		policy:     LastWriteWins{},
		now:        time.Now,
		defaults:   catalog.DefaultDocument,
		status:     make(map[model.Field]FieldStatus),
		inflight:   make(map[model.Field]int),
		conflicted: make(map[model.Field]bool),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "syncstore", "user", userID)
	s.cond = sync.NewCond(&s.mu)
	s.notifyCond = sync.NewCond(&s.notifyMu)
	return s
}

func (s *Store) UserID() string { return s.userID }

// Origin identifies the writes of this store in change notifications.
func (s *Store) Origin() string { return s.origin }

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// Start subscribes to remote changes and loads the document, creating it
// from the defaults when the user has none.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case stateStarting, stateRunning:
		s.mu.Unlock()
		return ErrAlreadyStarted
	case stateStopped:
		s.mu.Unlock()
		return ErrStopped
	}
	s.state = stateStarting
	s.mu.Unlock()

	doc, changes, cancel, err := s.connect(ctx)
	if err != nil {
		s.mu.Lock()
		if s.state == stateStarting {
			s.state = stateNew
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if s.state != stateStarting {
		s.mu.Unlock()
		cancel()
		return ErrStopped
	}
	s.state = stateRunning
	s.ctx = context.WithoutCancel(ctx)
	s.cancelWatch = cancel
	s.doc = *doc
	for _, f := range model.Fields {
		s.status[f] = Synced
	}
	go s.writeLoop()
	go s.watchLoop(changes)
	s.unlockAndNotify()

	s.logger.Info("store started", "origin", s.origin)
	return nil
}

func (s *Store) connect(ctx context.Context) (*model.Document, <-chan model.Change, func(), error) {
	// watch first so nothing written after the load is missed
	changes, cancel, err := s.remote.Watch(ctx, s.userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("watch document: %w", err)
	}
	doc, err := s.remote.Load(ctx, s.userID)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("load document: %w", err)
	}
	if doc != nil {
		return doc, changes, cancel, nil
	}

	def := s.defaults()
	if err := s.remote.Create(ctx, s.userID, def); err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("create document: %w", err)
	}
	// another device may have created it first
	doc, err = s.remote.Load(ctx, s.userID)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		doc = &def
	}
	s.logger.Info("document initialized")
	return doc, changes, cancel, nil
}

// Stop cancels the remote watch. Queued writes still run; their outcome no
// longer affects the local state.
func (s *Store) Stop() {
	s.mu.Lock()
	prev := s.state
	s.state = stateStopped
	cancel := s.cancelWatch
	s.cancelWatch = nil
	s.cond.Broadcast()
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if prev != stateRunning {
		s.closeDone()
	}
	if prev == stateRunning {
		s.logger.Info("store stopped")
	}
}

// Done is closed after Stop once every queued write has finished.
func (s *Store) Done() <-chan struct{} { return s.done }

func (s *Store) closeDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// State returns a deep copy of the current document.
func (s *Store) State() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Version increases with every change of the local document.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Status returns the replication state of a field.
func (s *Store) Status(f model.Field) FieldStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[f]
}

// Statuses returns the replication state of every field.
func (s *Store) Statuses() map[model.Field]FieldStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.Field]FieldStatus, len(model.Fields))
	for _, f := range model.Fields {
		out[f] = s.status[f]
	}
	return out
}

// Subscribe registers fn to receive a copy of the document after every
// change. fn runs outside the store lock but must not mutate the store
// synchronously.
func (s *Store) Subscribe(fn func(model.Document)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// unlockAndNotify bumps the version, releases s.mu and hands the new state
// to subscribers. It must be called with s.mu held. Subscribers run without
// s.mu, one version at a time and in version order.
func (s *Store) unlockAndNotify() {
	s.version++
	v := s.version
	doc := s.doc.Clone()
	subs := make([]func(model.Document), len(s.subs))
	for i, sub := range s.subs {
		subs[i] = sub.fn
	}
	s.mu.Unlock()

	s.notifyMu.Lock()
	for s.notified != v-1 {
		s.notifyCond.Wait()
	}
	s.notifyMu.Unlock()

	defer func() {
		s.notifyMu.Lock()
		s.notified = v
		s.notifyCond.Broadcast()
		s.notifyMu.Unlock()
	}()
	for i, fn := range subs {
		if i == len(subs)-1 {
			fn(doc)
			continue
		}
		fn(doc.Clone())
	}
}

// Update applies fn to the document and replicates the fields it returns.
// Returning no fields leaves the document untouched and yields an already
// resolved Pending.
func (s *Store) Update(fn func(d *model.Document) []model.Field) *Pending {
	s.mu.Lock()
	switch s.state {
	case stateNew, stateStarting:
		s.mu.Unlock()
		return resolved(Ack{}, ErrNotStarted)
	case stateStopped:
		s.mu.Unlock()
		return resolved(Ack{}, ErrStopped)
	}

	fields := fn(&s.doc)
	if len(fields) == 0 {
		s.mu.Unlock()
		return resolved(Ack{At: s.now()}, nil)
	}
	patch, err := s.doc.Patch(fields...)
	if err != nil {
		s.mu.Unlock()
		return resolved(Ack{}, err)
	}
	for _, f := range patch.Fields() {
		s.status[f] = LocallyModified
		s.inflight[f]++
	}
	p := newPending()
	s.jobs = append(s.jobs, job{patch: patch, pending: p})
	s.cond.Signal()
	s.unlockAndNotify()
	return p
}

// Mutate replaces one field with value.
func (s *Store) Mutate(field model.Field, value any) *Pending {
	raw, err := json.Marshal(value)
	if err != nil {
		return resolved(Ack{}, fmt.Errorf("encode %s: %w", field, err))
	}
	var setErr error
	p := s.Update(func(d *model.Document) []model.Field {
		if setErr = d.Set(field, raw); setErr != nil {
			return nil
		}
		return []model.Field{field}
	})
	if setErr != nil {
		return resolved(Ack{}, setErr)
	}
	return p
}

func (s *Store) writeLoop() {
	for {
		s.mu.Lock()
		for len(s.jobs) == 0 && s.state == stateRunning {
			s.cond.Wait()
		}
		if len(s.jobs) == 0 {
			s.mu.Unlock()
			s.closeDone()
			return
		}
		j := s.jobs[0]
		s.jobs[0] = job{}
		s.jobs = s.jobs[1:]
		ctx := s.ctx
		s.mu.Unlock()

		s.runJob(ctx, j)
	}
}

func (s *Store) runJob(ctx context.Context, j job) {
	fields := j.patch.Fields()
	start := time.Now()
	err := s.remote.Write(ctx, s.userID, s.origin, j.patch)
	s.metrics.observeWrite(err, time.Since(start))
	if err != nil {
		s.logger.Error("remote write failed", "fields", fields, "error", err)
		err = &SyncError{Fields: fields, Err: err}
	}

	var reconcile []model.Field
	s.mu.Lock()
	stopped := s.state == stateStopped
	for _, f := range fields {
		s.inflight[f]--
		if s.inflight[f] > 0 {
			if err != nil {
				s.status[f] = LostWrite
			}
			continue
		}
		conflicted := s.conflicted[f]
		delete(s.conflicted, f)
		switch {
		case err != nil:
			s.status[f] = LostWrite
		case conflicted && !stopped:
			reconcile = append(reconcile, f)
		default:
			s.status[f] = Synced
		}
	}
	s.mu.Unlock()

	if len(reconcile) > 0 {
		s.reconcile(ctx, reconcile)
	}
	j.pending.resolve(Ack{Fields: fields, At: s.now()}, err)
}

// reconcile re-reads fields that another device wrote while a local write
// was in flight, so every replica ends on the value stored last.
func (s *Store) reconcile(ctx context.Context, fields []model.Field) {
	s.metrics.reconcile(len(fields))
	doc, err := s.remote.Load(ctx, s.userID)
	if err != nil || doc == nil {
		s.logger.Warn("reconcile load failed", "fields", fields, "error", err)
		s.mu.Lock()
		for _, f := range fields {
			if s.inflight[f] == 0 {
				s.status[f] = Synced
			}
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		return
	}
	changed := false
	for _, f := range fields {
		if s.inflight[f] > 0 {
			continue
		}
		s.status[f] = Synced
		remote, err := doc.Encode(f)
		if err != nil {
			continue
		}
		local, _ := s.doc.Encode(f)
		if bytes.Equal(local, remote) {
			continue
		}
		if err := s.doc.Set(f, remote); err == nil {
			changed = true
		}
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	s.unlockAndNotify()
}

func (s *Store) watchLoop(changes <-chan model.Change) {
	for c := range changes {
		s.applyRemote(c)
	}
}

func (s *Store) applyRemote(c model.Change) {
	if c.Origin == s.origin {
		s.metrics.remoteChange("echo")
		return
	}
	if c.UserID != "" && c.UserID != s.userID {
		s.metrics.remoteChange("ignored")
		return
	}

	s.mu.Lock()
	if s.state != stateRunning {
		s.mu.Unlock()
		return
	}
	changed := false
	for _, f := range c.Patch.Fields() {
		local, err := s.doc.Encode(f)
		if err != nil {
			continue
		}
		value := s.policy.Resolve(Conflict{
			Field:    f,
			Local:    local,
			Incoming: c.Patch[f],
			Status:   s.status[f],
			At:       c.At,
		})
		if s.inflight[f] > 0 {
			s.conflicted[f] = true
		}
		if value == nil {
			continue
		}
		if s.inflight[f] == 0 {
			s.status[f] = Synced
		}
		if bytes.Equal(value, local) {
			continue
		}
		if err := s.doc.Set(f, value); err != nil {
			s.logger.Warn("ignoring remote field", "field", f, "error", err)
			continue
		}
		changed = true
	}
	if !changed {
		s.mu.Unlock()
		s.metrics.remoteChange("unchanged")
		return
	}
	s.metrics.remoteChange("applied")
	s.unlockAndNotify()
}
