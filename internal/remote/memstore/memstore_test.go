package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote/storetest"
)

func TestMemstoreCompliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) remote.Store { return New() })
}

func TestFailWith(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	boom := errors.New("store down")

	s.FailWith(boom)
	if _, err := s.Add(ctx, "c", map[string]any{"a": 1}); !errors.Is(err, boom) {
		t.Fatalf("Add while failing: %v", err)
	}
	if _, err := s.Get(ctx, "c", "x"); !errors.Is(err, boom) {
		t.Fatalf("Get while failing: %v", err)
	}

	s.FailWith(nil)
	if _, err := s.Add(ctx, "c", map[string]any{"a": 1}); err != nil {
		t.Fatalf("Add after clearing failure: %v", err)
	}
}

func TestFailAfterWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	boom := errors.New("mid-drain outage")
	s.FailAfterWrites(2, boom)

	if _, err := s.Add(ctx, "c", map[string]any{"n": 1}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := s.Add(ctx, "c", map[string]any{"n": 2}); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if _, err := s.Add(ctx, "c", map[string]any{"n": 3}); !errors.Is(err, boom) {
		t.Fatalf("third write should trip the failure, got %v", err)
	}
	if s.Len("c") != 2 {
		t.Fatalf("exactly two writes should have landed, got %d", s.Len("c"))
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New()
	id, err := s.Add(ctx, "c", map[string]any{"notes": "original"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	doc, _ := s.Get(ctx, "c", id)
	doc.Fields["notes"] = "mutated"
	again, _ := s.Get(ctx, "c", id)
	if again.Fields["notes"] != "original" {
		t.Fatal("mutating a returned document must not touch the stored one")
	}
}

var _ remote.Store = (*Store)(nil)
