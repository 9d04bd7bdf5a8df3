package rinktracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote/memstore"
)

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s should panic", name)
		}
	}()
	fn()
}

func TestOptionValidation(t *testing.T) {
	expectPanic(t, "WithCacheTTL(0)", func() {
		_ = New(memstore.New(), WithCacheTTL(0))
	})
	expectPanic(t, "WithVerifyThresholdFeet(-1)", func() {
		_ = New(memstore.New(), WithVerifyThresholdFeet(-1))
	})
	expectPanic(t, "WithClock(nil)", func() {
		_ = New(memstore.New(), WithClock(nil))
	})
	expectPanic(t, "WithLocalStore(nil)", func() {
		_ = New(memstore.New(), WithLocalStore(nil))
	})
	expectPanic(t, "WithConnectivity(nil)", func() {
		_ = New(memstore.New(), WithConnectivity(nil))
	})
	expectPanic(t, "WithGeoTimeout(0)", func() {
		_ = New(memstore.New(), WithGeoTimeout(0))
	})
}

func TestWithClockDrivesTimestamps(t *testing.T) {
	frozen := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	c := New(memstore.New(), WithClock(func() time.Time { return frozen }))
	defer func() { _ = c.Close() }()

	saved, err := c.Activities().Save(context.Background(), testActivity("u1", "r1"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved.CreatedAt.Equal(frozen) || !saved.UpdatedAt.Equal(frozen) {
		t.Fatalf("timestamps = %v / %v, want %v", saved.CreatedAt, saved.UpdatedAt, frozen)
	}
}

type settableClock struct {
	mu sync.Mutex
	t  time.Time
}

func (s *settableClock) now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t
}

func (s *settableClock) advance(d time.Duration) {
	s.mu.Lock()
	s.t = s.t.Add(d)
	s.mu.Unlock()
}

func TestWithCacheTTLControlsStaleness(t *testing.T) {
	clock := &settableClock{t: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)}
	st := memstore.New()
	c := New(st, WithCacheTTL(time.Minute), WithClock(clock.now))
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if _, err := c.Activities().Save(ctx, testActivity("u1", "r1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := c.Activities().FindByOwner(ctx, "u1"); err != nil {
		t.Fatalf("FindByOwner: %v", err)
	}

	// A remote outage inside the TTL is invisible, the cache serves reads.
	st.FailWith(errors.New("simulated outage"))
	recs, err := c.Activities().FindByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByOwner during outage: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("cached read returned %d records, want 1", len(recs))
	}

	// Past the TTL the cache is stale, and with the store down the read
	// degrades to empty instead of erroring.
	clock.advance(2 * time.Minute)
	recs, err = c.Activities().FindByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByOwner after TTL: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("stale read with a dead store returned %d records, want 0", len(recs))
	}
}
