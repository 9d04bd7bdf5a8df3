package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestManualEdgesOnly(t *testing.T) {
	m := NewManual(false)
	ch := m.Subscribe()

	m.Set(false) // no change, no event
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v for unchanged level", ev)
	case <-time.After(20 * time.Millisecond):
	}

	m.Set(true)
	select {
	case ev := <-ch:
		if !ev.Online {
			t.Fatalf("expected online edge, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for online edge")
	}
	if !m.Online() {
		t.Fatal("level should be online after Set(true)")
	}

	m.Set(false)
	select {
	case ev := <-ch:
		if ev.Online {
			t.Fatalf("expected offline edge, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for offline edge")
	}
}

func TestManualMultipleSubscribers(t *testing.T) {
	m := NewManual(false)
	a := m.Subscribe()
	b := m.Subscribe()

	m.Set(true)
	for _, ch := range []<-chan Event{a, b} {
		select {
		case ev := <-ch:
			if !ev.Online {
				t.Fatalf("expected online edge, got %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the edge")
		}
	}
}

func TestManualSlowSubscriberDoesNotBlock(t *testing.T) {
	m := NewManual(false)
	_ = m.Subscribe() // never read

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			m.Set(i%2 == 0)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Set blocked on a slow subscriber")
	}
}

func TestProberFlipsOnServerState(t *testing.T) {
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(srv.URL, WithProbeInterval(5*time.Millisecond))
	ch := p.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitEdge(t, ch, true)
	if !p.Online() {
		t.Fatal("prober should report online")
	}

	failing.Store(true)
	waitEvent(t, ch, 5*time.Second, false)

	failing.Store(false)
	waitEvent(t, ch, 5*time.Second, true)
}

func TestProberStartsOffline(t *testing.T) {
	p := NewProber("http://127.0.0.1:0/unreachable")
	if p.Online() {
		t.Fatal("prober should start offline before any probe")
	}
}

func waitEdge(t *testing.T, ch <-chan Event, online bool) {
	t.Helper()
	waitEvent(t, ch, 2*time.Second, online)
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration, online bool) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-ch:
			if ev.Online == online {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for online=%v edge", online)
		}
	}
}
