package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// ActivityKind enumerates the supported on-ice activity categories.
type ActivityKind string

const (
	KindPublicSkate   ActivityKind = "public_skate"
	KindHockey        ActivityKind = "hockey"
	KindFigureSkating ActivityKind = "figure_skating"
	KindLesson        ActivityKind = "lesson"
	KindFreestyle     ActivityKind = "freestyle"
	KindOther         ActivityKind = "other"
)

// Valid reports whether k is one of the supported kinds.
func (k ActivityKind) Valid() bool {
	switch k {
	case KindPublicSkate, KindHockey, KindFigureSkating, KindLesson, KindFreestyle, KindOther:
		return true
	}
	return false
}

// GeoPoint is a WGS84 coordinate pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ActivityRecord is a single logged on-ice activity. ID is assigned by the
// remote store on first successful write and stays empty while the record
// only exists locally.
type ActivityRecord struct {
	ID              string       `json:"id,omitempty"`
	OwnerID         string       `json:"ownerId"`
	RinkID          string       `json:"rinkId"`
	Kind            ActivityKind `json:"kind"`
	OccurredAt      time.Time    `json:"occurredAt"`
	DurationMinutes int          `json:"durationMinutes"`
	Notes           string       `json:"notes,omitempty"`
	Rating          int          `json:"rating,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// RinkLink tracks the per-owner relationship with one rink. Its identity is
// the deterministic composite key from LinkID, so the same owner and rink
// always map to the same document.
type RinkLink struct {
	ID               string     `json:"id,omitempty"`
	OwnerID          string     `json:"ownerId"`
	RinkID           string     `json:"rinkId"`
	VisitCount       int64      `json:"visitCount"`
	LastVisitAt      *time.Time `json:"lastVisitAt,omitempty"`
	HasVerifiedVisit bool       `json:"hasVerifiedVisit"`
	IsFavorite       bool       `json:"isFavorite"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// RinkSnapshot is the denormalized rink detail embedded in visits and
// upserted into the shared rinks collection on save.
type RinkSnapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	Coordinates *GeoPoint `json:"coordinates,omitempty"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
}

// DetailedVisit is an activity log entry that additionally carries the rink
// snapshot as it looked at save time, a photo list, and a visibility flag.
type DetailedVisit struct {
	ID              string       `json:"id,omitempty"`
	OwnerID         string       `json:"ownerId"`
	RinkID          string       `json:"rinkId"`
	Kind            ActivityKind `json:"kind"`
	OccurredAt      time.Time    `json:"occurredAt"`
	DurationMinutes int          `json:"durationMinutes"`
	Notes           string       `json:"notes,omitempty"`
	Rating          int          `json:"rating,omitempty"`
	Rink            RinkSnapshot `json:"rink"`
	Photos          []string     `json:"photos,omitempty"`
	Public          bool         `json:"public"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// LinkID builds the composite RinkLink document id. The underscore join is
// load-bearing: it makes link upserts collision-free across owners and rinks.
func LinkID(ownerID, rinkID string) string {
	return ownerID + "_" + rinkID
}
