package rinktracker

import (
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/syncer"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

// Public type aliases so consumers can import only the rinktracker package.

// Domain entities
type (
	ActivityRecord = types.ActivityRecord
	RinkLink       = types.RinkLink
	DetailedVisit  = types.DetailedVisit
	RinkSnapshot   = types.RinkSnapshot
	GeoPoint       = types.GeoPoint
	ActivityKind   = types.ActivityKind
)

// Activity kinds
const (
	KindPublicSkate   = types.KindPublicSkate
	KindHockey        = types.KindHockey
	KindFigureSkating = types.KindFigureSkating
	KindLesson        = types.KindLesson
	KindFreestyle     = types.KindFreestyle
	KindOther         = types.KindOther
)

// SyncResult is one completed drain, delivered on the Subscribe channel.
type SyncResult = syncer.Result

// LinkID builds the deterministic composite id for an owner/rink link.
func LinkID(ownerID, rinkID string) string { return types.LinkID(ownerID, rinkID) }
