package types

import "fmt"

// ------------------------------
// Shared Errors
// ------------------------------

// ErrInvalidEntity is returned when an entity fails validation. Validation
// runs before any I/O, so an invalid entity is never queued or sent.
var ErrInvalidEntity = fmt.Errorf("invalid entity")

// ErrOffline is returned by operations that need the remote store and have
// no offline fallback shape (deletes, link mutations).
var ErrOffline = fmt.Errorf("offline: remote store unreachable")

// ------------------------------
// Entity Families
// ------------------------------

// Family identifies one tracked entity family. The queue tags every pending
// write with its family so the drain knows the destination collection.
type Family string

const (
	FamilyActivity Family = "activity"
	FamilyLink     Family = "link"
	FamilyVisit    Family = "visit"
)

// Remote collection names per family.
const (
	CollectionActivities = "activities"
	CollectionLinks      = "user_rinks"
	CollectionVisits     = "visits"
	CollectionRinks      = "rinks"
)

// CollectionFor maps a family to its remote collection.
func CollectionFor(f Family) string {
	switch f {
	case FamilyActivity:
		return CollectionActivities
	case FamilyLink:
		return CollectionLinks
	case FamilyVisit:
		return CollectionVisits
	}
	return string(f)
}

// ------------------------------
// Validation
// ------------------------------

// ValidateActivity checks the ActivityRecord invariants.
func ValidateActivity(a *ActivityRecord) error {
	if a == nil {
		return fmt.Errorf("%w: nil activity", ErrInvalidEntity)
	}
	if a.OwnerID == "" {
		return fmt.Errorf("%w: ownerId is required", ErrInvalidEntity)
	}
	if a.RinkID == "" {
		return fmt.Errorf("%w: rinkId is required", ErrInvalidEntity)
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: unknown activity kind %q", ErrInvalidEntity, a.Kind)
	}
	if a.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes must be > 0", ErrInvalidEntity)
	}
	if a.Rating != 0 && (a.Rating < 1 || a.Rating > 5) {
		return fmt.Errorf("%w: rating must be in [1,5]", ErrInvalidEntity)
	}
	return nil
}

// ValidateVisit checks the DetailedVisit invariants. The embedded snapshot
// must at least identify the rink it describes.
func ValidateVisit(v *DetailedVisit) error {
	if v == nil {
		return fmt.Errorf("%w: nil visit", ErrInvalidEntity)
	}
	if v.OwnerID == "" {
		return fmt.Errorf("%w: ownerId is required", ErrInvalidEntity)
	}
	if v.RinkID == "" {
		return fmt.Errorf("%w: rinkId is required", ErrInvalidEntity)
	}
	if !v.Kind.Valid() {
		return fmt.Errorf("%w: unknown activity kind %q", ErrInvalidEntity, v.Kind)
	}
	if v.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes must be > 0", ErrInvalidEntity)
	}
	if v.Rating != 0 && (v.Rating < 1 || v.Rating > 5) {
		return fmt.Errorf("%w: rating must be in [1,5]", ErrInvalidEntity)
	}
	if v.Rink.ID != "" && v.Rink.ID != v.RinkID {
		return fmt.Errorf("%w: snapshot rink id %q does not match rinkId %q", ErrInvalidEntity, v.Rink.ID, v.RinkID)
	}
	return nil
}

// ValidateLinkKey checks the composite-key parts for link operations.
func ValidateLinkKey(ownerID, rinkID string) error {
	if ownerID == "" {
		return fmt.Errorf("%w: ownerId is required", ErrInvalidEntity)
	}
	if rinkID == "" {
		return fmt.Errorf("%w: rinkId is required", ErrInvalidEntity)
	}
	return nil
}
