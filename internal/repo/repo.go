// Package repo holds the per-family repositories: cache-first reads,
// write-through writes while online, durable queueing while offline.
//
// Failure semantics are asymmetric. Reads never surface transport
// errors: they log and degrade to an empty result. An online write that
// fails propagates to the caller. Offline creates appear to succeed
// immediately; the queue is durable and drains on reconnect.
package repo

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/cache"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/connectivity"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/queue"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
)

// Deps bundles the collaborators every repository shares. The cache is the
// same instance across all repositories so invalidation in one family's
// write path is visible to every reader.
type Deps struct {
	Store   remote.Store
	Cache   *cache.Cache
	Queue   *queue.Queue
	Monitor connectivity.Monitor
	Log     zerolog.Logger
	Now     func() time.Time
}

func (d *Deps) defaults() {
	if d.Now == nil {
		d.Now = time.Now
	}
}

func (d *Deps) online() bool {
	return d.Monitor != nil && d.Monitor.Online()
}

// degraded logs a read-path failure that is about to become an empty
// result.
func (d *Deps) degraded(err error, op, key string) {
	d.Log.Warn().Err(err).Str("op", op).Str("key", key).Msg("read degraded to empty result")
}

// readErr decides what a failed remote read means for the caller: a
// canceled context propagates, anything else is logged and swallowed.
func (d *Deps) readErr(ctx context.Context, err error, op, key string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	d.degraded(err, op, key)
	return nil
}

func (d *Deps) stamp() time.Time {
	return d.Now().UTC()
}

// equals builds the equality-filter list the remote query contract takes.
func equals(pairs ...string) []remote.Filter {
	filters := make([]remote.Filter, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		filters = append(filters, remote.Filter{Field: pairs[i], Value: pairs[i+1]})
	}
	return filters
}

var newestFirst = remote.OrderBy{Field: "occurredAt", Desc: true}
