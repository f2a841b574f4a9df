package remote

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/model"
	"github.com/dukerupert/moveready/internal/pubsub"
	"github.com/dukerupert/moveready/internal/store"
	"github.com/dukerupert/moveready/internal/syncstore"
)

func setup(t *testing.T) (*Documents, *pubsub.Local) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ps := pubsub.NewLocal(16)
	return New(store.NewDocumentStore(db), ps, nil), ps
}

func testDocument() model.Document {
	return model.Document{
		Inventory: []model.Item{
			{ID: "k-fridge", Name: "Fridge", Category: model.CategoryKitchen, Store: model.StoreFurniture, EstimatedPrice: 300},
		},
		AdminTasks:     []model.AdminTask{},
		BoxCounts:      model.BoxCounts{},
		DailyGroceries: []model.DailyGroceryItem{},
		Snapshots:      []model.Snapshot{},
		Roommates:      []string{},
		BoxSize:        model.BoxMedium,
	}
}

func next(t *testing.T, ch <-chan model.Change) model.Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}
	return model.Change{}
}

func TestLoadMissing(t *testing.T) {
	docs, _ := setup(t)

	doc, err := docs.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestWritePublishesChange(t *testing.T) {
	ctx := context.Background()
	docs, _ := setup(t)
	require.NoError(t, docs.Create(ctx, "u1", testDocument()))

	changes, cancel, err := docs.Watch(ctx, "u1")
	require.NoError(t, err)
	defer cancel()

	patch := model.Patch{model.FieldMovingDate: json.RawMessage(`"2026-07-01"`)}
	require.NoError(t, docs.Write(ctx, "u1", "device-a", patch))

	c := next(t, changes)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "device-a", c.Origin)
	assert.JSONEq(t, `"2026-07-01"`, string(c.Patch[model.FieldMovingDate]))

	doc, err := docs.Load(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "2026-07-01", doc.MovingDate)
	assert.Len(t, doc.Inventory, 1)
}

func TestWriteWithoutDocument(t *testing.T) {
	docs, _ := setup(t)

	err := docs.Write(context.Background(), "u1", "a", model.Patch{model.FieldMovingDate: json.RawMessage(`""`)})
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}

func TestWatchSkipsGarbage(t *testing.T) {
	ctx := context.Background()
	docs, ps := setup(t)
	require.NoError(t, docs.Create(ctx, "u1", testDocument()))

	changes, cancel, err := docs.Watch(ctx, "u1")
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, Channel("u1"), "not json"))
	require.NoError(t, docs.Write(ctx, "u1", "a", model.Patch{model.FieldFurnitureVolume: json.RawMessage(`4.5`)}))

	c := next(t, changes)
	assert.Equal(t, "a", c.Origin)
}

func TestWatchCancelClosesChannel(t *testing.T) {
	docs, _ := setup(t)

	changes, cancel, err := docs.Watch(context.Background(), "u1")
	require.NoError(t, err)
	cancel()
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestReplaceReachesEveryStore(t *testing.T) {
	ctx := context.Background()
	docs, _ := setup(t)

	s := syncstore.New("u1", docs, syncstore.WithDefaults(testDocument))
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	replaced := testDocument()
	replaced.MovingDate = "2026-09-15"
	replaced.Inventory = nil
	require.NoError(t, docs.Replace(ctx, "u1", replaced))

	assert.Eventually(t, func() bool {
		return s.State().MovingDate == "2026-09-15"
	}, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, s.State().Inventory)
}

// Two devices signed into the same account converge through the shared
// document.
func TestTwoStoresConverge(t *testing.T) {
	ctx := context.Background()
	docs, _ := setup(t)

	phone := syncstore.New("u1", docs, syncstore.WithDefaults(testDocument))
	laptop := syncstore.New("u1", docs, syncstore.WithDefaults(testDocument))
	require.NoError(t, phone.Start(ctx))
	defer phone.Stop()
	require.NoError(t, laptop.Start(ctx))
	defer laptop.Stop()

	wait := func(p *syncstore.Pending) {
		t.Helper()
		wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_, err := p.Wait(wctx)
		require.NoError(t, err)
	}

	wait(phone.ToggleItem("k-fridge"))
	assert.Eventually(t, func() bool {
		return laptop.State().Inventory[0].Acquired
	}, 2*time.Second, 5*time.Millisecond)

	wait(laptop.AddRoommate("Sam"))
	assert.Eventually(t, func() bool {
		return len(phone.State().Roommates) == 1
	}, 2*time.Second, 5*time.Millisecond)

	stored, err := docs.Load(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, stored.Inventory[0].Acquired)
	assert.Equal(t, []string{"Sam"}, stored.Roommates)
}
