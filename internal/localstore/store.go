// Package localstore is the durable holding pen for writes made while
// disconnected. It knows nothing about entity semantics; it appends opaque
// payload records, returns them in insertion order, and clears them.
package localstore

import (
	"context"
	"time"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

// Item is one pending write. Payload is the entity encoded without its
// remote id; Family, OwnerID and RinkID exist so the drain can route the
// payload and scope cache invalidation afterwards.
type Item struct {
	ID         string
	Family     types.Family
	OwnerID    string
	RinkID     string
	Payload    []byte
	EnqueuedAt time.Time
}

// Store persists pending writes across process restarts. Implementations
// must preserve insertion order in ReadAll. No cross-item transactional
// guarantee is assumed.
type Store interface {
	Append(ctx context.Context, item Item) error
	ReadAll(ctx context.Context) ([]Item, error)
	Clear(ctx context.Context) error
	Close() error
}
