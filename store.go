package rinktracker

import (
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/connectivity"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/geo"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/localstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
)

// Aliases for the collaborator contracts New accepts, so integrators can
// supply their own implementations without reaching into internal
// packages.

// RemoteStore is the document store the client reads and writes. Bundled
// implementations: httpstore (REST), postgres (JSONB), memstore (tests).
type RemoteStore = remote.Store

// Remote store vocabulary.
type (
	Document = remote.Document
	Filter   = remote.Filter
	OrderBy  = remote.OrderBy
	Query    = remote.Query
	Batch    = remote.Batch
)

// LocalStore is the durable backing for the offline queue. Bundled
// implementations: SQLite file and in-memory.
type LocalStore = localstore.Store

// QueuedWrite is one pending offline write as persisted by the queue.
type QueuedWrite = localstore.Item

// NewMemoryLocalStore keeps queued writes in process memory. Pending
// writes are lost on restart.
func NewMemoryLocalStore() LocalStore { return localstore.NewMemory() }

// OpenSQLiteLocalStore opens, creating when missing, a SQLite-backed
// queue file.
func OpenSQLiteLocalStore(path string) (LocalStore, error) { return localstore.OpenSQLite(path) }

// ConnectivityMonitor reports the online level and its transitions.
type ConnectivityMonitor = connectivity.Monitor

// ConnectivityEvent is one online/offline transition.
type ConnectivityEvent = connectivity.Event

// ManualConnectivity is a monitor the embedding app drives itself, e.g.
// from browser online/offline events.
type ManualConnectivity = connectivity.Manual

// NewManualConnectivity builds a monitor starting at the given level.
func NewManualConnectivity(online bool) *ManualConnectivity {
	return connectivity.NewManual(online)
}

// GeoProvider supplies the device position for visit verification.
type GeoProvider = geo.Provider
