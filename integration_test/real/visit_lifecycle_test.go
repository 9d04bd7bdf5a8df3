//go:build integration
// +build integration

package rinktracker_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	rinktracker "github.com/MikeOG444/rink-tracker-pwa-sub000"
)

// TestVisitLifecycle covers end-to-end save, list, link, and delete against
// a running rinkstored backend.
func TestVisitLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := rinktracker.Open(rinktracker.Config{
		ServiceURL: backendURL(),
	}, rinktracker.WithConnectivity(rinktracker.NewManualConnectivity(true)))
	if err != nil {
		t.Fatalf("open client: %v", err)
	}
	defer func() { _ = c.Close() }()

	// Unique owner per run so reruns against a shared backend stay clean.
	owner := fmt.Sprintf("it-%d", time.Now().UnixNano())
	rink := rinktracker.RinkSnapshot{ID: "it-rink-1", Name: "Integration Arena"}

	// save visit
	v := &rinktracker.DetailedVisit{
		OwnerID:         owner,
		RinkID:          rink.ID,
		Kind:            rinktracker.KindHockey,
		OccurredAt:      time.Now().UTC().Truncate(time.Second),
		DurationMinutes: 60,
		Rink:            rink,
	}
	if _, err := c.Visits().Save(ctx, v); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if v.ID == "" {
		t.Fatal("Save: empty visit ID")
	}

	// get visit
	got, err := c.Visits().FindByID(ctx, v.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil || got.ID != v.ID {
		t.Fatalf("FindByID: unexpected visit %+v", got)
	}

	// list visits
	visits, err := c.Visits().FindByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("FindByOwner: %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("FindByOwner: expected 1 visit, got %d", len(visits))
	}

	// check in twice, then read the link back
	if _, err := c.CheckIn(ctx, rinktracker.CheckInRequest{OwnerID: owner, Rink: rink}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if _, err := c.CheckIn(ctx, rinktracker.CheckInRequest{OwnerID: owner, Rink: rink}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	link, err := c.Links().FindByOwnerAndRink(ctx, owner, rink.ID)
	if err != nil {
		t.Fatalf("FindByOwnerAndRink: %v", err)
	}
	if link == nil || link.VisitCount != 2 {
		t.Fatalf("unexpected link: %+v", link)
	}

	// favorite toggle round trip
	fav, err := c.Links().ToggleFavorite(ctx, owner, rink.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	if !fav {
		t.Fatal("ToggleFavorite: expected favorite on first toggle")
	}

	// cleanup
	if err := c.Visits().Delete(ctx, v); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = c.Visits().FindByID(ctx, v.ID)
	if err != nil {
		t.Fatalf("FindByID after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("expected visit gone after delete, got %+v", got)
	}
}
