package types

import (
	"errors"
	"testing"
	"time"
)

func TestValidateActivity(t *testing.T) {
	t.Parallel()
	base := func() *ActivityRecord {
		return &ActivityRecord{
			OwnerID:         "u1",
			RinkID:          "r1",
			Kind:            KindHockey,
			OccurredAt:      time.Now().UTC(),
			DurationMinutes: 45,
		}
	}
	cases := []struct {
		name   string
		mutate func(*ActivityRecord)
		ok     bool
	}{
		{"valid", func(a *ActivityRecord) {}, true},
		{"valid with rating", func(a *ActivityRecord) { a.Rating = 5 }, true},
		{"missing owner", func(a *ActivityRecord) { a.OwnerID = "" }, false},
		{"missing rink", func(a *ActivityRecord) { a.RinkID = "" }, false},
		{"bad kind", func(a *ActivityRecord) { a.Kind = "curling" }, false},
		{"zero duration", func(a *ActivityRecord) { a.DurationMinutes = 0 }, false},
		{"negative duration", func(a *ActivityRecord) { a.DurationMinutes = -10 }, false},
		{"rating too high", func(a *ActivityRecord) { a.Rating = 6 }, false},
	}
	for _, c := range cases {
		a := base()
		c.mutate(a)
		err := ValidateActivity(a)
		if c.ok && err != nil {
			t.Fatalf("%s: expected ok, got %v", c.name, err)
		}
		if !c.ok {
			if err == nil {
				t.Fatalf("%s: expected error", c.name)
			}
			if !errors.Is(err, ErrInvalidEntity) {
				t.Fatalf("%s: error should wrap ErrInvalidEntity, got %v", c.name, err)
			}
		}
	}
}

func TestValidateVisitSnapshotMismatch(t *testing.T) {
	t.Parallel()
	v := &DetailedVisit{
		OwnerID:         "u1",
		RinkID:          "r1",
		Kind:            KindPublicSkate,
		DurationMinutes: 60,
		Rink:            RinkSnapshot{ID: "r2", Name: "Other Rink"},
	}
	if err := ValidateVisit(v); err == nil {
		t.Fatal("expected error for snapshot id mismatch")
	}
	v.Rink.ID = "r1"
	if err := ValidateVisit(v); err != nil {
		t.Fatalf("expected ok after fixing snapshot id, got %v", err)
	}
}

func TestObjectRoundTripStripsAndRestoresID(t *testing.T) {
	t.Parallel()
	when := time.Date(2026, 2, 14, 19, 30, 0, 0, time.UTC)
	in := &DetailedVisit{
		ID:              "v-123",
		OwnerID:         "u1",
		RinkID:          "r1",
		Kind:            KindFigureSkating,
		OccurredAt:      when,
		DurationMinutes: 90,
		Rating:          4,
		Rink: RinkSnapshot{
			ID:          "r1",
			Name:        "Iceplex",
			Address:     "1 Rink Way",
			Coordinates: &GeoPoint{Lat: 43.6532, Lng: -79.3832},
		},
		Photos: []string{"p1.jpg"},
		Public: true,
	}

	fields, err := ToObject(in)
	if err != nil {
		t.Fatalf("ToObject: %v", err)
	}
	if _, present := fields["id"]; present {
		t.Fatal("ToObject must strip the id field")
	}

	var out DetailedVisit
	if err := FromObject("remote-9", fields, &out); err != nil {
		t.Fatalf("FromObject: %v", err)
	}
	if out.ID != "remote-9" {
		t.Fatalf("id not injected, got %q", out.ID)
	}
	if out.OwnerID != in.OwnerID || out.RinkID != in.RinkID || out.Kind != in.Kind {
		t.Fatalf("identity fields lost: %+v", out)
	}
	if !out.OccurredAt.Equal(when) || out.DurationMinutes != 90 || out.Rating != 4 {
		t.Fatalf("visit fields lost: %+v", out)
	}
	if out.Rink.Name != "Iceplex" || out.Rink.Coordinates == nil || out.Rink.Coordinates.Lat != 43.6532 {
		t.Fatalf("snapshot lost: %+v", out.Rink)
	}
	if len(out.Photos) != 1 || !out.Public {
		t.Fatalf("photo list or visibility lost: %+v", out)
	}
}

func TestLinkID(t *testing.T) {
	t.Parallel()
	if got := LinkID("u1", "r1"); got != "u1_r1" {
		t.Fatalf("unexpected link id %q", got)
	}
}
