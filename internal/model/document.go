package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

// Field names one top-level field of the per-user document. Fields are the
// only write granularity.
type Field string

const (
	FieldInventory       Field = "inventory"
	FieldAdminTasks      Field = "adminTasks"
	FieldBoxCounts       Field = "boxCounts"
	FieldMovingDate      Field = "movingDate"
	FieldFurnitureVolume Field = "furnitureVolume"
	FieldDailyGroceries  Field = "dailyGroceries"
	FieldSnapshots       Field = "snapshots"
	FieldRoommates       Field = "roommates"
	FieldBoxSize         Field = "boxSize"
	FieldProfile         Field = "profile"
)

// Fields lists every document field.
var Fields = []Field{
	FieldInventory, FieldAdminTasks, FieldBoxCounts, FieldMovingDate, FieldFurnitureVolume,
	FieldDailyGroceries, FieldSnapshots, FieldRoommates, FieldBoxSize, FieldProfile,
}

func (f *Field) UnmarshalText(b []byte) error {
	return decodeEnum(f, b, Fields, "field")
}

// Profile holds onboarding answers.
type Profile struct {
	Name        string      `json:"name,omitempty"`
	HousingType HousingType `json:"housingType,omitempty"`
	Onboarded   bool        `json:"onboarded"`
}

// SnapshotData is the captured part of a document.
type SnapshotData struct {
	Inventory      []Item             `json:"inventory"`
	AdminTasks     []AdminTask        `json:"adminTasks"`
	DailyGroceries []DailyGroceryItem `json:"dailyGroceries"`
}

// Snapshot is a named, restorable copy of the core collections. It is never
// modified after creation.
type Snapshot struct {
	ID        string       `json:"id"`
	Label     string       `json:"label"`
	Timestamp time.Time    `json:"timestamp"`
	Data      SnapshotData `json:"data"`
}

func (s SnapshotData) Clone() SnapshotData {
	return SnapshotData{
		Inventory:      CloneItems(s.Inventory),
		AdminTasks:     CloneTasks(s.AdminTasks),
		DailyGroceries: slices.Clone(s.DailyGroceries),
	}
}

// Document is the single replicated document an identity owns.
type Document struct {
	Inventory       []Item             `json:"inventory"`
	AdminTasks      []AdminTask        `json:"adminTasks"`
	BoxCounts       BoxCounts          `json:"boxCounts"`
	MovingDate      string             `json:"movingDate"`
	FurnitureVolume float64            `json:"furnitureVolume"`
	DailyGroceries  []DailyGroceryItem `json:"dailyGroceries"`
	Snapshots       []Snapshot         `json:"snapshots"`
	Roommates       []string           `json:"roommates"`
	BoxSize         BoxSize            `json:"boxSize"`
	Profile         Profile            `json:"profile"`
}

// Clone returns a deep copy sharing no memory with d.
func (d Document) Clone() Document {
	c := d
	c.Inventory = CloneItems(d.Inventory)
	c.AdminTasks = CloneTasks(d.AdminTasks)
	c.BoxCounts = maps.Clone(d.BoxCounts)
	c.DailyGroceries = slices.Clone(d.DailyGroceries)
	c.Roommates = slices.Clone(d.Roommates)
	if d.Snapshots != nil {
		c.Snapshots = make([]Snapshot, len(d.Snapshots))
		for i, s := range d.Snapshots {
			s.Data = s.Data.Clone()
			c.Snapshots[i] = s
		}
	}
	return c
}

func (d *Document) value(f Field) (any, error) {
	switch f {
	case FieldInventory:
		return &d.Inventory, nil
	case FieldAdminTasks:
		return &d.AdminTasks, nil
	case FieldBoxCounts:
		return &d.BoxCounts, nil
	case FieldMovingDate:
		return &d.MovingDate, nil
	case FieldFurnitureVolume:
		return &d.FurnitureVolume, nil
	case FieldDailyGroceries:
		return &d.DailyGroceries, nil
	case FieldSnapshots:
		return &d.Snapshots, nil
	case FieldRoommates:
		return &d.Roommates, nil
	case FieldBoxSize:
		return &d.BoxSize, nil
	case FieldProfile:
		return &d.Profile, nil
	}
	return nil, fmt.Errorf("field %q: %w", string(f), ErrUnknownEnum)
}

// Encode returns the JSON encoding of one field.
func (d *Document) Encode(f Field) (json.RawMessage, error) {
	v, err := d.value(f)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return b, nil
}

// Set replaces one field with a JSON value. The field is left untouched
// when decoding fails.
func (d *Document) Set(f Field, raw json.RawMessage) error {
	tmp := Document{}
	v, err := tmp.value(f)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", f, err)
	}
	dst, _ := d.value(f)
	switch p := dst.(type) {
	case *[]Item:
		*p = tmp.Inventory
	case *[]AdminTask:
		*p = tmp.AdminTasks
	case *BoxCounts:
		*p = tmp.BoxCounts
	case *string:
		*p = tmp.MovingDate
	case *float64:
		*p = tmp.FurnitureVolume
	case *[]DailyGroceryItem:
		*p = tmp.DailyGroceries
	case *[]Snapshot:
		*p = tmp.Snapshots
	case *[]string:
		*p = tmp.Roommates
	case *BoxSize:
		*p = tmp.BoxSize
	case *Profile:
		*p = tmp.Profile
	}
	return nil
}

// Patch is a partial document: encoded values keyed by field.
type Patch map[Field]json.RawMessage

// Fields returns the patched fields in document order.
func (p Patch) Fields() []Field {
	var out []Field
	for _, f := range Fields {
		if _, ok := p[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Patch encodes the given fields of d.
func (d *Document) Patch(fields ...Field) (Patch, error) {
	p := make(Patch, len(fields))
	for _, f := range fields {
		raw, err := d.Encode(f)
		if err != nil {
			return nil, err
		}
		p[f] = raw
	}
	return p, nil
}

// Apply sets every field present in p. It stops at the first field that
// fails to decode.
func (d *Document) Apply(p Patch) error {
	for _, f := range p.Fields() {
		if err := d.Set(f, p[f]); err != nil {
			return err
		}
	}
	return nil
}

// FullPatch encodes every field of d.
func (d *Document) FullPatch() (Patch, error) {
	return d.Patch(Fields...)
}

// Change is one replicated write as seen by watchers of a document.
type Change struct {
	UserID string    `json:"userId"`
	Origin string    `json:"origin"`
	Patch  Patch     `json:"patch"`
	At     time.Time `json:"at"`
}
