// Package anchor captures and restores named copies of the inventory, the
// admin tasks and the grocery list.
package anchor

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/syncstore"
)

// DefaultLabel names an anchor created without a label.
func DefaultLabel(now time.Time) string {
	return "Anchor " + now.Format("2006-01-02 15:04")
}

// Create captures the current collections as a new snapshot, newest first.
// Snapshots are never pruned.
func Create(s *syncstore.Store, label string, now time.Time) (model.Snapshot, *syncstore.Pending) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultLabel(now)
	}
	snap := model.Snapshot{ID: uuid.NewString(), Label: label, Timestamp: now.UTC()}
	p := s.Update(func(d *model.Document) []model.Field {
		snap.Data = model.SnapshotData{
			Inventory:      d.Inventory,
			AdminTasks:     d.AdminTasks,
			DailyGroceries: d.DailyGroceries,
		}.Clone()
		d.Snapshots = append([]model.Snapshot{snap}, d.Snapshots...)
		return []model.Field{model.FieldSnapshots}
	})
	return snap, p
}

// Restore replaces the three collections with the snapshot's copies. An
// unknown id is a no-op.
func Restore(s *syncstore.Store, id string) *syncstore.Pending {
	return s.Update(func(d *model.Document) []model.Field {
		i := index(d.Snapshots, id)
		if i < 0 {
			return nil
		}
		data := d.Snapshots[i].Data.Clone()
		d.Inventory = nonNil(data.Inventory)
		d.AdminTasks = nonNil(data.AdminTasks)
		d.DailyGroceries = nonNil(data.DailyGroceries)
		return []model.Field{model.FieldInventory, model.FieldAdminTasks, model.FieldDailyGroceries}
	})
}

// Delete removes a snapshot. An unknown id is a no-op.
func Delete(s *syncstore.Store, id string) *syncstore.Pending {
	return s.Update(func(d *model.Document) []model.Field {
		i := index(d.Snapshots, id)
		if i < 0 {
			return nil
		}
		d.Snapshots = slices.Delete(d.Snapshots, i, i+1)
		return []model.Field{model.FieldSnapshots}
	})
}

// List returns the snapshots newest first.
func List(doc model.Document) []model.Snapshot {
	out := slices.Clone(doc.Snapshots)
	slices.SortStableFunc(out, func(a, b model.Snapshot) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if out == nil {
		out = []model.Snapshot{}
	}
	return out
}

// Get returns the snapshot with the given id.
func Get(doc model.Document, id string) (model.Snapshot, bool) {
	i := index(doc.Snapshots, id)
	if i < 0 {
		return model.Snapshot{}, false
	}
	return doc.Snapshots[i], true
}

func index(snaps []model.Snapshot, id string) int {
	return slices.IndexFunc(snaps, func(s model.Snapshot) bool { return s.ID == id })
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
