package replica

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/moveready/internal/auth"
	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/pubsub"
	"github.com/dukerupert/moveready/internal/remote"
	"github.com/dukerupert/moveready/internal/store"
	"github.com/dukerupert/moveready/internal/syncstore"
	"github.com/dukerupert/moveready/internal/websocket"
)

type recorder struct {
	mu           sync.Mutex
	msgs         map[string][]websocket.Message
	disconnected []string
}

func (r *recorder) Disconnect(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = append(r.disconnected, userID)
	return 0
}

func (r *recorder) Broadcast(userID string, msg websocket.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.msgs == nil {
		r.msgs = make(map[string][]websocket.Message)
	}
	r.msgs[userID] = append(r.msgs[userID], msg)
}

func (r *recorder) count(userID, typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs[userID] {
		if m.Type == typ {
			n++
		}
	}
	return n
}

func setup(t *testing.T) (*Manager, *recorder, *store.DocumentStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	docs := store.NewDocumentStore(db)
	rec := &recorder{}
	m := NewManager(context.Background(), remote.New(docs, pubsub.NewLocal(64), nil), rec, slog.Default())
	t.Cleanup(m.Close)
	return m, rec, docs
}

func TestGetStartsOnce(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	stores := make([]*syncstore.Store, 8)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Get(ctx, "alice")
			assert.NoError(t, err)
			stores[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range stores {
		assert.Same(t, stores[0], s)
	}
	assert.Equal(t, 1, m.Len())
	assert.Len(t, m.Active(), 1)
	assert.NotEmpty(t, stores[0].State().Inventory, "default document is created")
}

func TestLevelUpBroadcastOnce(t *testing.T) {
	m, rec, _ := setup(t)
	s, err := m.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.count("alice", websocket.TypeLevelUp), "loading never levels up")

	inv := s.State().Inventory
	require.GreaterOrEqual(t, len(inv), 11)
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = inv[i].ID
	}
	_, p := s.SetItemsAcquired(ids, true)
	_, err = p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count("alice", websocket.TypeLevelUp))

	// staying on the same level does not fire again
	_, p = s.SetItemsAcquired([]string{inv[10].ID}, true)
	_, err = p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count("alice", websocket.TypeLevelUp))
	assert.Positive(t, rec.count("alice", websocket.TypeDocumentUpdated))
}

func TestTrackBroadcastsSyncError(t *testing.T) {
	m, rec, docs := setup(t)
	ctx := context.Background()
	s, err := m.Get(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, docs.Delete(ctx, "alice"))
	p := s.SetMovingDate("2026-09-01")
	m.Track("alice", p)

	_, err = p.Wait(ctx)
	var serr *syncstore.SyncError
	require.ErrorAs(t, err, &serr)
	assert.Eventually(t, func() bool {
		return rec.count("alice", websocket.TypeSyncError) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRelease(t *testing.T) {
	m, _, _ := setup(t)
	ctx := context.Background()
	s, err := m.Get(ctx, "alice")
	require.NoError(t, err)

	m.Release("alice")
	m.Release("alice")
	assert.Equal(t, 0, m.Len())

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("released store not stopped")
	}

	again, err := m.Get(ctx, "alice")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
}

func TestGetAfterClose(t *testing.T) {
	m, _, _ := setup(t)
	m.Close()
	_, err := m.Get(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConcurrentMutationsBroadcastVersions(t *testing.T) {
	m, rec, _ := setup(t)
	s, err := m.Get(context.Background(), "alice")
	require.NoError(t, err)
	before := rec.count("alice", websocket.TypeDocumentUpdated)

	done := make(chan struct{})
	go func() {
		defer close(done)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					s.SetFurnitureVolume(float64(i*10 + j))
				}
			}(i)
		}
		wg.Wait()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("mutations did not complete")
	}
	assert.Equal(t, before+80, rec.count("alice", websocket.TypeDocumentUpdated))
	assert.NotPanics(t, func() { _ = s.State() })
}

func TestSignOutReleasesAndDisconnects(t *testing.T) {
	m, rec, _ := setup(t)
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	p := auth.NewProvider(store.NewUserStore(db), auth.Config{JWTSecret: "secret"}, slog.Default())
	detach := m.Attach(p)
	defer detach()

	s, err := m.Get(context.Background(), "alice")
	require.NoError(t, err)

	p.SignOut(context.Background(), "alice")
	assert.Equal(t, 0, m.Len())
	<-s.Done()
	rec.mu.Lock()
	assert.Equal(t, []string{"alice"}, rec.disconnected)
	rec.mu.Unlock()
}
