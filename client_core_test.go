package rinktracker

import (
	"context"
	"testing"
	"time"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/connectivity"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote/memstore"
)

func TestNewRejectsNilStore(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New(nil) should panic")
		}
	}()
	_ = New(nil)
}

func TestClientDefaults(t *testing.T) {
	c := New(memstore.New())
	defer func() { _ = c.Close() }()

	if !c.Online() {
		t.Fatal("default client should assume online")
	}
	if c.Activities() == nil || c.Links() == nil || c.Visits() == nil {
		t.Fatal("repositories should be wired")
	}
	if c.Subscribe() == nil {
		t.Fatal("Subscribe should return a channel")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := New(memstore.New())
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestClientOnlineTracksMonitor(t *testing.T) {
	mon := connectivity.NewManual(false)
	c := New(memstore.New(), WithConnectivity(mon))
	defer func() { _ = c.Close() }()

	if c.Online() {
		t.Fatal("client should report offline")
	}
	mon.Set(true)
	if !c.Online() {
		t.Fatal("client should report online after the edge")
	}
}

func TestSyncNowOnEmptyQueue(t *testing.T) {
	c := New(memstore.New())
	defer func() { _ = c.Close() }()

	n, err := c.SyncNow(context.Background())
	if err != nil {
		t.Fatalf("SyncNow: %v", err)
	}
	if n != 0 {
		t.Fatalf("SyncNow drained %d writes from an empty queue", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.AwaitSync(ctx); err != nil {
		t.Fatalf("AwaitSync: %v", err)
	}
}
