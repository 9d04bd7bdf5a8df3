package repo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/cache"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/connectivity"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/localstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/queue"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote/memstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

// countingStore wraps the in-memory store so tests can assert how many
// remote round trips a code path makes.
type countingStore struct {
	remote.Store
	gets    atomic.Int64
	queries atomic.Int64
	adds    atomic.Int64
}

func (c *countingStore) Get(ctx context.Context, collection, id string) (remote.Document, error) {
	c.gets.Add(1)
	return c.Store.Get(ctx, collection, id)
}

func (c *countingStore) Query(ctx context.Context, collection string, q remote.Query) ([]remote.Document, error) {
	c.queries.Add(1)
	return c.Store.Query(ctx, collection, q)
}

func (c *countingStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	c.adds.Add(1)
	return c.Store.Add(ctx, collection, fields)
}

func (c *countingStore) reset() {
	c.gets.Store(0)
	c.queries.Store(0)
	c.adds.Store(0)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

type harness struct {
	mem     *memstore.Store
	store   *countingStore
	cache   *cache.Cache
	queue   *queue.Queue
	monitor *connectivity.Manual
	clock   *fakeClock
	deps    Deps
}

func newTestDeps(t *testing.T, online bool) *harness {
	t.Helper()
	h := &harness{
		mem:     memstore.New(),
		clock:   newFakeClock(),
		monitor: connectivity.NewManual(online),
	}
	h.store = &countingStore{Store: h.mem}
	h.cache = cache.NewWithClock(cache.DefaultTTL, h.clock.Now)
	h.queue = queue.New(localstore.NewMemory(), zerolog.Nop())
	h.deps = Deps{
		Store:   h.store,
		Cache:   h.cache,
		Queue:   h.queue,
		Monitor: h.monitor,
		Log:     zerolog.Nop(),
		Now:     h.clock.Now,
	}
	return h
}

func (h *harness) queueLen(t *testing.T) int {
	t.Helper()
	n, err := h.queue.Len(context.Background())
	if err != nil {
		t.Fatalf("queue len: %v", err)
	}
	return n
}

func newActivity(owner, rink string) *types.ActivityRecord {
	return &types.ActivityRecord{
		OwnerID:         owner,
		RinkID:          rink,
		Kind:            types.KindPublicSkate,
		OccurredAt:      time.Date(2024, 2, 20, 18, 30, 0, 0, time.UTC),
		DurationMinutes: 45,
	}
}

func newVisit(owner, rink string) *types.DetailedVisit {
	return &types.DetailedVisit{
		OwnerID:         owner,
		RinkID:          rink,
		Kind:            types.KindHockey,
		OccurredAt:      time.Date(2024, 2, 21, 20, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Rink: types.RinkSnapshot{
			ID:   rink,
			Name: "Test Rink",
			Coordinates: &types.GeoPoint{
				Lat: 43.6532,
				Lng: -79.3832,
			},
		},
		Public: true,
	}
}
