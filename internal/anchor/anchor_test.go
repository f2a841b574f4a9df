package anchor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/pubsub"
	"github.com/dukerupert/moveready/internal/remote"
	"github.com/dukerupert/moveready/internal/store"
	"github.com/dukerupert/moveready/internal/syncstore"
)

func seed() model.Document {
	return model.Document{
		Inventory: []model.Item{
			{ID: "k-fridge", Name: "Fridge", Category: model.CategoryKitchen, Store: model.StoreFurniture, EstimatedPrice: 300},
			{ID: "b-bed", Name: "Bed", Category: model.CategoryBedroom, Store: model.StoreFurniture, EstimatedPrice: 200},
		},
		AdminTasks: []model.AdminTask{
			{ID: "1", Label: "Notice", Category: model.AdminHousing, Status: model.StatusTodo},
		},
		BoxCounts:      model.BoxCounts{},
		DailyGroceries: []model.DailyGroceryItem{{ID: "g1", Name: "Milk", Quantity: 1, Unit: "L", Category: model.GroceryFresh}},
		Snapshots:      []model.Snapshot{},
		Roommates:      []string{},
		BoxSize:        model.BoxMedium,
	}
}

func newStore(t *testing.T) (*syncstore.Store, *remote.Documents) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	docs := remote.New(store.NewDocumentStore(db), pubsub.NewLocal(16), nil)
	s := syncstore.New("u1", docs, syncstore.WithDefaults(seed))
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)
	return s, docs
}

func wait(t *testing.T, p *syncstore.Pending) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := p.Wait(ctx)
	require.NoError(t, err)
}

func TestRoundTrip(t *testing.T) {
	s, docs := newStore(t)
	before := s.State()

	snap, p := Create(s, "Before shopping", time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	wait(t, p)

	wait(t, s.ToggleItem("k-fridge"))
	wait(t, s.DeleteItem("b-bed"))
	wait(t, s.ToggleAdminTask("1"))
	wait(t, s.ClearCheckedGroceries())
	_, gp := s.AddGrocery(model.DailyGroceryItem{Name: "Bread"})
	wait(t, gp)

	wait(t, Restore(s, snap.ID))

	after := s.State()
	assert.Equal(t, before.Inventory, after.Inventory)
	assert.Equal(t, before.AdminTasks, after.AdminTasks)
	assert.Equal(t, before.DailyGroceries, after.DailyGroceries)

	stored, err := docs.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, before.Inventory, stored.Inventory)
	assert.Len(t, stored.Snapshots, 1)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newStore(t)

	snap, p := Create(s, "", time.Now())
	wait(t, p)
	wait(t, s.ToggleItem("k-fridge"))

	got, ok := Get(s.State(), snap.ID)
	require.True(t, ok)
	assert.False(t, got.Data.Inventory[0].Acquired)
}

func TestCreateDefaultLabel(t *testing.T) {
	s, _ := newStore(t)
	now := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

	snap, p := Create(s, "  ", now)
	wait(t, p)

	assert.Equal(t, "Anchor 2026-05-01 09:30", snap.Label)
	assert.NotEmpty(t, snap.ID)
	assert.True(t, snap.Timestamp.Equal(now))
}

func TestListNewestFirst(t *testing.T) {
	s, _ := newStore(t)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	first, _ := Create(s, "first", base)
	second, _ := Create(s, "second", base.Add(time.Hour))

	list := List(s.State())
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	assert.Empty(t, List(model.Document{}))
	assert.NotNil(t, List(model.Document{}))
}

func TestMissingIDsAreNoOps(t *testing.T) {
	s, _ := newStore(t)
	before := s.State()
	version := s.Version()

	wait(t, Restore(s, "nope"))
	wait(t, Delete(s, "nope"))

	assert.Equal(t, version, s.Version())
	assert.Equal(t, before, s.State())
}

func TestDelete(t *testing.T) {
	s, _ := newStore(t)

	snap, _ := Create(s, "x", time.Now())
	keep, p := Create(s, "y", time.Now())
	wait(t, p)

	wait(t, Delete(s, snap.ID))

	list := List(s.State())
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}
