package syncstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/moveready/internal/model"
)

var (
	ErrNotStarted     = errors.New("store not started")
	ErrStopped        = errors.New("store stopped")
	ErrAlreadyStarted = errors.New("store already started")
	ErrInvalid        = errors.New("invalid value")
)

// Ack confirms that a remote write was applied.
type Ack struct {
	Fields []model.Field `json:"fields"`
	At     time.Time     `json:"at"`
}

// SyncError reports a remote write that failed. The local state keeps the
// optimistic value.
type SyncError struct {
	Fields []model.Field
	Err    error
}

func (e *SyncError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("sync %s: %v", strings.Join(names, ","), e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Pending is the outcome of a mutation's remote write. Callers that do not
// care about replication can ignore it.
type Pending struct {
	done chan struct{}
	ack  Ack
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func resolved(ack Ack, err error) *Pending {
	p := newPending()
	p.resolve(ack, err)
	return p
}

func (p *Pending) resolve(ack Ack, err error) {
	p.ack, p.err = ack, err
	close(p.done)
}

// Done is closed once the write has succeeded or failed.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the write resolves or ctx is done. A failed write
// returns a *SyncError.
func (p *Pending) Wait(ctx context.Context) (Ack, error) {
	select {
	case <-p.done:
		return p.ack, p.err
	case <-ctx.Done():
		return Ack{}, ctx.Err()
	}
}

// Err returns the write error, or nil while the write is still running.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}
