// Package queue is the append-only log of writes made while disconnected.
// It only holds creations: every payload is persisted id-less so the remote
// store assigns a fresh id during the drain.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/localstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

var queuedWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "rink_tracker",
		Name:      "queued_writes_total",
		Help:      "Writes accepted into the offline queue.",
	},
	[]string{"family"},
)

// Queue wraps a durable store with the pending-write semantics: id
// stripping on the way in, insertion order on the way out.
type Queue struct {
	store localstore.Store
	log   zerolog.Logger
	now   func() time.Time
}

// New returns a queue over the given durable store.
func New(store localstore.Store, log zerolog.Logger) *Queue {
	return &Queue{store: store, log: log, now: time.Now}
}

// Enqueue serializes entity without its id and appends it. The returned
// write id identifies the queue entry, not the future remote document.
func (q *Queue) Enqueue(ctx context.Context, family types.Family, ownerID, rinkID string, entity any) (string, error) {
	fields, err := types.ToObject(entity)
	if err != nil {
		return "", fmt.Errorf("queue encode: %w", err)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("queue encode payload: %w", err)
	}
	item := localstore.Item{
		ID:         uuid.NewString(),
		Family:     family,
		OwnerID:    ownerID,
		RinkID:     rinkID,
		Payload:    payload,
		EnqueuedAt: q.now().UTC(),
	}
	if err := q.store.Append(ctx, item); err != nil {
		return "", err
	}
	queuedWrites.WithLabelValues(string(family)).Inc()
	q.log.Debug().
		Str("writeId", item.ID).
		Str("family", string(family)).
		Str("ownerId", ownerID).
		Msg("queued offline write")
	return item.ID, nil
}

// DrainAll returns every pending write in insertion order without removing
// anything. Clearing is a separate, explicit step so a failed drain leaves
// the queue intact.
func (q *Queue) DrainAll(ctx context.Context) ([]localstore.Item, error) {
	return q.store.ReadAll(ctx)
}

// Clear removes every pending write. Call only after a drain delivered the
// whole batch.
func (q *Queue) Clear(ctx context.Context) error {
	return q.store.Clear(ctx)
}

// Len reports the number of pending writes.
func (q *Queue) Len(ctx context.Context) (int, error) {
	items, err := q.store.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
