package syncstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/moveready/internal/model"
)

var errBoom = errors.New("boom")

// fakeRemote is an in-memory Remote that delivers changes synchronously to
// its watchers before Write returns.
type fakeRemote struct {
	mu       sync.Mutex
	docs     map[string]*model.Document
	watchers map[string][]chan model.Change
	writes   []model.Patch
	failWith error
	// called before each write, outside the lock
	beforeWrite func(origin string)
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		docs:     make(map[string]*model.Document),
		watchers: make(map[string][]chan model.Change),
	}
}

func (r *fakeRemote) Load(_ context.Context, userID string) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[userID]
	if !ok {
		return nil, nil
	}
	c := d.Clone()
	return &c, nil
}

func (r *fakeRemote) Create(_ context.Context, userID string, doc model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[userID]; !ok {
		c := doc.Clone()
		r.docs[userID] = &c
	}
	return nil
}

func (r *fakeRemote) Write(_ context.Context, userID, origin string, patch model.Patch) error {
	r.mu.Lock()
	hook := r.beforeWrite
	r.mu.Unlock()
	if hook != nil {
		hook(origin)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	d, ok := r.docs[userID]
	if !ok {
		return errors.New("no document")
	}
	if err := d.Apply(patch); err != nil {
		return err
	}
	r.writes = append(r.writes, patch)
	change := model.Change{UserID: userID, Origin: origin, Patch: patch, At: time.Now()}
	for _, ch := range r.watchers[userID] {
		ch <- change
	}
	return nil
}

func (r *fakeRemote) Watch(_ context.Context, userID string) (<-chan model.Change, func(), error) {
	ch := make(chan model.Change, 64)
	r.mu.Lock()
	r.watchers[userID] = append(r.watchers[userID], ch)
	r.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			list := r.watchers[userID]
			for i, c := range list {
				if c == ch {
					r.watchers[userID] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

func (r *fakeRemote) setFail(err error) {
	r.mu.Lock()
	r.failWith = err
	r.mu.Unlock()
}

func (r *fakeRemote) setBeforeWrite(fn func(origin string)) {
	r.mu.Lock()
	r.beforeWrite = fn
	r.mu.Unlock()
}

func (r *fakeRemote) doc(t *testing.T, userID string) model.Document {
	t.Helper()
	d, err := r.Load(context.Background(), userID)
	if err != nil || d == nil {
		t.Fatalf("remote document %s missing: %v", userID, err)
	}
	return *d
}

func (r *fakeRemote) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func smallDocument() model.Document {
	return model.Document{
		Inventory: []model.Item{
			{ID: "k-fridge", Name: "Fridge", Category: model.CategoryKitchen, Store: model.StoreFurniture, EstimatedPrice: 300, Priority: true},
			{ID: "b-bed", Name: "Bed", Category: model.CategoryBedroom, Store: model.StoreFurniture, EstimatedPrice: 200,
				SubItems: []model.SubItem{{ID: "s1", Label: "Frame"}, {ID: "s2", Label: "Mattress"}}},
		},
		AdminTasks: []model.AdminTask{
			{ID: "1", Label: "Notice", Category: model.AdminHousing, Status: model.StatusTodo},
			{ID: "2", Label: "Power", Category: model.AdminEnergy, Status: model.StatusInProgress},
		},
		BoxCounts:      model.BoxCounts{},
		DailyGroceries: []model.DailyGroceryItem{},
		Snapshots:      []model.Snapshot{},
		Roommates:      []string{},
		BoxSize:        model.BoxMedium,
	}
}

func startStore(t *testing.T, remote *fakeRemote, userID string, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithDefaults(smallDocument)}, opts...)
	s := New(userID, remote, opts...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start store: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func wait(t *testing.T, p *Pending) (Ack, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ack, err := p.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("timeout waiting for write")
	}
	return ack, err
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
