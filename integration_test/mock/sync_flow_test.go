package rinktracker_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	rinktracker "github.com/MikeOG444/rink-tracker-pwa-sub000"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/devstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote/memstore"
)

// startBackend serves the document API in process, exactly what the
// rinkstored binary mounts.
func startBackend(t *testing.T, opts ...devstore.Option) (*httptest.Server, *memstore.Store) {
	t.Helper()
	mem := memstore.New()
	srv := httptest.NewServer(devstore.New(mem, zerolog.Nop(), opts...).Router())
	t.Cleanup(srv.Close)
	return srv, mem
}

func openClient(t *testing.T, url string, mon rinktracker.ConnectivityMonitor) *rinktracker.Client {
	t.Helper()
	c, err := rinktracker.Open(rinktracker.Config{
		ServiceURL: url,
		QueuePath:  filepath.Join(t.TempDir(), "queue.db"),
	}, rinktracker.WithConnectivity(mon))
	if err != nil {
		t.Fatalf("open client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOfflineSavesDrainToBackend(t *testing.T) {
	srv, mem := startBackend(t)
	mon := rinktracker.NewManualConnectivity(false)
	c := openClient(t, srv.URL, mon)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		a := &rinktracker.ActivityRecord{
			OwnerID:         "u1",
			RinkID:          "r1",
			Kind:            rinktracker.KindHockey,
			OccurredAt:      time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
			DurationMinutes: 60,
		}
		if _, err := c.Activities().Save(ctx, a); err != nil {
			t.Fatalf("offline save %d: %v", i, err)
		}
		if a.ID != "" {
			t.Fatalf("offline save must not assign an id, got %q", a.ID)
		}
	}
	if mem.Len("activities") != 0 {
		t.Fatalf("backend must stay untouched while offline, has %d docs", mem.Len("activities"))
	}

	results := c.Subscribe()
	mon.Set(true)

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	select {
	case res := <-results:
		if res.Drained != 3 {
			t.Fatalf("expected 3 drained writes, got %d", res.Drained)
		}
	case <-waitCtx.Done():
		t.Fatal("drain did not complete in time")
	}
	if err := c.AwaitSync(waitCtx); err != nil {
		t.Fatalf("await sync: %v", err)
	}

	if mem.Len("activities") != 3 {
		t.Fatalf("expected 3 activities on backend, got %d", mem.Len("activities"))
	}

	// Post-drain reads come back from the backend with server ids.
	got, err := c.Activities().FindByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("find by owner: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(got))
	}
	for _, a := range got {
		if a.ID == "" {
			t.Fatalf("drained activity missing id: %+v", a)
		}
	}
}

func TestQueueSurvivesClientRestart(t *testing.T) {
	srv, mem := startBackend(t)
	queuePath := filepath.Join(t.TempDir(), "queue.db")
	ctx := context.Background()

	open := func(online bool) *rinktracker.Client {
		c, err := rinktracker.Open(rinktracker.Config{
			ServiceURL: srv.URL,
			QueuePath:  queuePath,
		}, rinktracker.WithConnectivity(rinktracker.NewManualConnectivity(online)))
		if err != nil {
			t.Fatalf("open client: %v", err)
		}
		return c
	}

	first := open(false)
	v := &rinktracker.DetailedVisit{
		OwnerID:         "u1",
		RinkID:          "r1",
		Kind:            rinktracker.KindPublicSkate,
		OccurredAt:      time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 45,
		Rink:            rinktracker.RinkSnapshot{ID: "r1", Name: "Downtown Arena"},
	}
	if _, err := first.Visits().Save(ctx, v); err != nil {
		t.Fatalf("offline save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A fresh client over the same queue file starts online and drains the
	// backlog without being asked.
	second := open(true)
	defer func() { _ = second.Close() }()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := second.AwaitSync(waitCtx); err != nil {
		t.Fatalf("await sync: %v", err)
	}
	if mem.Len("visits") != 1 {
		t.Fatalf("expected 1 visit on backend, got %d", mem.Len("visits"))
	}
}

func TestSyncNowOverTheWire(t *testing.T) {
	srv, mem := startBackend(t)
	mon := rinktracker.NewManualConnectivity(false)
	c := openClient(t, srv.URL, mon)
	ctx := context.Background()

	a := &rinktracker.ActivityRecord{
		OwnerID:         "u1",
		RinkID:          "r1",
		Kind:            rinktracker.KindLesson,
		OccurredAt:      time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
	}
	if _, err := c.Activities().Save(ctx, a); err != nil {
		t.Fatalf("offline save: %v", err)
	}

	if _, err := c.SyncNow(ctx); !rinktracker.IsOffline(err) {
		t.Fatalf("expected offline error, got %v", err)
	}

	mon.Set(true)
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.AwaitSync(waitCtx); err != nil {
		t.Fatalf("await sync: %v", err)
	}

	n, err := c.SyncNow(ctx)
	if err != nil {
		t.Fatalf("sync now: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty drain after await, got %d", n)
	}
	if mem.Len("activities") != 1 {
		t.Fatalf("expected 1 activity on backend, got %d", mem.Len("activities"))
	}
}
