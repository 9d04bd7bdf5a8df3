package rinktracker

import (
	"errors"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/syncer"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

// Re-export shared errors so callers compare against a single symbol.
var (
	// ErrNotFound reports a remote read miss.
	ErrNotFound = remote.ErrNotFound

	// ErrOffline is returned by operations that need the remote store and
	// have no offline fallback shape (deletes, edits, link mutations,
	// manual sync).
	ErrOffline = types.ErrOffline

	// ErrInvalidEntity is returned when validation rejects an entity
	// before any I/O.
	ErrInvalidEntity = types.ErrInvalidEntity

	// ErrSyncInFlight is returned by SyncNow when a drain is already
	// running.
	ErrSyncInFlight = syncer.ErrSyncInFlight
)

// IsOffline reports whether err is the offline condition.
func IsOffline(err error) bool { return errors.Is(err, ErrOffline) }

// IsNotFound reports whether err is a remote read miss.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
