package syncstore

import (
	"encoding/json"
	"time"

	"github.com/dukerupert/moveready/internal/model"
)

// FieldStatus is the replication state of one document field.
type FieldStatus int

const (
	Uninitialized FieldStatus = iota
	Synced
	// LocallyModified means at least one write of the field is in flight.
	LocallyModified
	// LostWrite means the last write of the field failed and local state
	// may differ from the remote document.
	LostWrite
)

func (s FieldStatus) String() string {
	switch s {
	case Synced:
		return "synced"
	case LocallyModified:
		return "locally_modified"
	case LostWrite:
		return "lost_write"
	}
	return "uninitialized"
}

func (s FieldStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Conflict describes a remote value arriving for a field.
type Conflict struct {
	Field    model.Field
	Local    json.RawMessage
	Incoming json.RawMessage
	Status   FieldStatus
	At       time.Time
}

// ConflictPolicy decides the value a field takes when another writer changed
// it. Returning nil keeps the local value.
type ConflictPolicy interface {
	Resolve(c Conflict) json.RawMessage
}

// PolicyFunc adapts a function to ConflictPolicy.
type PolicyFunc func(c Conflict) json.RawMessage

func (f PolicyFunc) Resolve(c Conflict) json.RawMessage { return f(c) }

// LastWriteWins always takes the incoming value.
type LastWriteWins struct{}

func (LastWriteWins) Resolve(c Conflict) json.RawMessage { return c.Incoming }
