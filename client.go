// Package rinktracker is the offline-first core for logging visits to ice
// rinks: a bounded-staleness cache over a remote document store, a durable
// queue for writes made while disconnected, an edge-triggered drain that
// reconciles the queue when connectivity returns, and geographic
// verification of logged visits.
package rinktracker

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/cache"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/connectivity"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/geo"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/localstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/queue"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/repo"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/syncer"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/types"
)

const (
	// DefaultVerifyThresholdFeet is the distance within which a measured
	// position counts as "at the rink".
	DefaultVerifyThresholdFeet = 500.0

	defaultGeoTimeout = 10 * time.Second
)

// Client is the façade the app layer talks to. It owns the shared cache,
// the offline queue, the sync loop, and one repository per entity family.
// All methods are safe for concurrent use.
type Client struct {
	store   remote.Store
	cache   *cache.Cache
	local   localstore.Store
	queue   *queue.Queue
	monitor connectivity.Monitor
	syncer  *syncer.Syncer
	geo     geo.Provider
	log     zerolog.Logger
	now     func() time.Time

	cacheTTL            time.Duration
	verifyThresholdFeet float64
	geoTimeout          time.Duration

	activities *repo.Activities
	links      *repo.Links
	visits     *repo.Visits

	cancel     context.CancelFunc
	closedOnce uint32
}

// New constructs a Client over the given remote store. The zero
// configuration is fully usable: in-memory queue, always-online
// connectivity, five minute cache TTL. Production callers pass a durable
// local store and a real connectivity monitor via options, or use Open.
//
// New panics on nil store or a failing option; both are construction-time
// misuse, not runtime conditions.
func New(store remote.Store, opts ...Option) *Client {
	if store == nil {
		panic("store cannot be nil")
	}

	c := &Client{
		store:               store,
		log:                 zerolog.Nop(),
		now:                 time.Now,
		cacheTTL:            cache.DefaultTTL,
		verifyThresholdFeet: DefaultVerifyThresholdFeet,
		geoTimeout:          defaultGeoTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}

	if c.local == nil {
		c.local = localstore.NewMemory()
	}
	if c.monitor == nil {
		c.monitor = connectivity.NewManual(true)
	}
	c.cache = cache.NewWithClock(c.cacheTTL, c.now)
	c.queue = queue.New(c.local, c.log)
	c.syncer = syncer.New(c.queue, c.store, c.cache, c.monitor, c.log)

	deps := repo.Deps{
		Store:   c.store,
		Cache:   c.cache,
		Queue:   c.queue,
		Monitor: c.monitor,
		Log:     c.log,
		Now:     c.now,
	}
	c.activities = repo.NewActivities(deps)
	c.links = repo.NewLinks(deps)
	c.visits = repo.NewVisits(deps)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.syncer.Run(ctx)
	if p, ok := c.monitor.(*connectivity.Prober); ok {
		go p.Run(ctx)
	}
	return c
}

// Activities returns the activity log repository.
func (c *Client) Activities() *repo.Activities { return c.activities }

// Links returns the owner/rink relationship repository.
func (c *Client) Links() *repo.Links { return c.links }

// Visits returns the detailed visit repository.
func (c *Client) Visits() *repo.Visits { return c.visits }

// Online reports the current connectivity level.
func (c *Client) Online() bool { return c.monitor.Online() }

// SyncNow drains the offline queue immediately and returns the number of
// writes delivered. ErrOffline when disconnected, ErrSyncInFlight when a
// drain is already running.
func (c *Client) SyncNow(ctx context.Context) (int, error) {
	return c.syncer.SyncNow(ctx)
}

// AwaitSync blocks until the offline queue is empty and no drain is in
// flight, or ctx is done.
func (c *Client) AwaitSync(ctx context.Context) error {
	return c.syncer.Wait(ctx)
}

// Subscribe returns a channel of drain completions. The app layer treats
// each receive as "re-fetch what you display".
func (c *Client) Subscribe() <-chan SyncResult {
	return c.syncer.Subscribe()
}

// CheckInRequest describes one visit check-in: who, where, and how hard to
// try measuring the device position.
type CheckInRequest struct {
	OwnerID      string
	Rink         RinkSnapshot
	HighAccuracy bool
}

// CheckInResult reports the verification outcome. DistanceFeet is NaN when
// no position could be measured or the rink has no coordinates.
type CheckInResult struct {
	Verified     bool
	DistanceFeet float64
}

// CheckIn records a visit to a rink: it measures the device position,
// verifies it against the rink coordinates within the configured
// threshold, and increments the owner's visit link with the outcome. A
// failed or unavailable position measurement degrades to an unverified
// visit, it never blocks the check-in itself. Check-ins need connectivity
// and return ErrOffline without it.
func (c *Client) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error) {
	if err := types.ValidateLinkKey(req.OwnerID, req.Rink.ID); err != nil {
		return nil, err
	}

	res := &CheckInResult{DistanceFeet: math.NaN()}
	if c.geo != nil && req.Rink.Coordinates != nil {
		pos, err := c.geo.CurrentPosition(ctx, req.HighAccuracy, c.geoTimeout)
		if err != nil {
			c.log.Warn().Err(err).Str("rinkId", req.Rink.ID).Msg("position unavailable, visit stays unverified")
		} else if pos != nil {
			meters := geo.DistanceMeters(*pos, *req.Rink.Coordinates)
			res.DistanceFeet = meters / geo.MetersPerFoot
			res.Verified = geo.WithinFeet(pos, req.Rink.Coordinates, c.verifyThresholdFeet)
		}
	}

	snapshot := req.Rink
	if err := c.links.IncrementVisit(ctx, req.OwnerID, req.Rink.ID, &snapshot, res.Verified); err != nil {
		return nil, err
	}
	checkinsTotal.WithLabelValues(boolLabel(res.Verified)).Inc()
	return res, nil
}

// Close stops the sync loop and the connectivity prober and closes the
// durable queue store. Safe to call multiple times; queued writes survive
// in the local store and drain on the next start.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.cancel()
	return c.local.Close()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
