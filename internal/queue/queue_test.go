package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/localstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

func TestEnqueueStripsID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q := New(localstore.NewMemory(), zerolog.Nop())

	a := &types.ActivityRecord{
		ID:              "already-synced-once",
		OwnerID:         "u1",
		RinkID:          "r1",
		Kind:            types.KindHockey,
		DurationMinutes: 45,
	}
	if _, err := q.Enqueue(ctx, types.FamilyActivity, a.OwnerID, a.RinkID, a); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	items, err := q.DrainAll(ctx)
	if err != nil {
		t.Fatalf("DrainAll: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	var fields map[string]any
	if err := json.Unmarshal(items[0].Payload, &fields); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if _, present := fields["id"]; present {
		t.Fatal("queued payload must not carry a remote id")
	}
	if fields["ownerId"] != "u1" || fields["durationMinutes"] != float64(45) {
		t.Fatalf("payload fields lost: %v", fields)
	}
	if items[0].Family != types.FamilyActivity || items[0].OwnerID != "u1" || items[0].RinkID != "r1" {
		t.Fatalf("routing tags lost: %+v", items[0])
	}
}

func TestEnqueueOrderAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q := New(localstore.NewMemory(), zerolog.Nop())

	var ids []string
	for _, notes := range []string{"first", "second", "third"} {
		id, err := q.Enqueue(ctx, types.FamilyVisit, "u1", "r1", &types.DetailedVisit{
			OwnerID: "u1", RinkID: "r1", Kind: types.KindPublicSkate, DurationMinutes: 30, Notes: notes,
		})
		if err != nil {
			t.Fatalf("Enqueue %q: %v", notes, err)
		}
		ids = append(ids, id)
	}

	if n, _ := q.Len(ctx); n != 3 {
		t.Fatalf("Len = %d, want 3", n)
	}
	items, _ := q.DrainAll(ctx)
	for i, it := range items {
		if it.ID != ids[i] {
			t.Fatalf("order broken at %d: got %s want %s", i, it.ID, ids[i])
		}
	}
	// DrainAll is read-only.
	if n, _ := q.Len(ctx); n != 3 {
		t.Fatalf("DrainAll must not consume, Len = %d", n)
	}
	if err := q.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _ := q.Len(ctx); n != 0 {
		t.Fatalf("Len after clear = %d, want 0", n)
	}
}
