// Package health provides the periodic dependency checking behind the dev
// service's health endpoint.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Pinger is implemented by dependencies that can answer a cheap liveness
// probe. HealthPing must return nil when the dependency is usable.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

// Checker is a named component-level health check.
type Checker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// PingChecker adapts a Pinger into a Checker with a cached flag, so the
// health endpoint never blocks on a probe.
type PingChecker struct {
	name         string
	pinger       Pinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewPingChecker starts unhealthy until the first successful probe.
func NewPingChecker(name string, p Pinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	c := &PingChecker{name: name, pinger: p, log: log, probeTimeout: probeTimeout}
	c.healthy.Store(0)
	return c
}

// Name returns the checker name.
func (c *PingChecker) Name() string { return c.name }

// IsHealthy returns the cached status without probing.
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start probes every interval until ctx is canceled.
func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		to := c.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		probeCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if err := c.pinger.HealthPing(probeCtx); err != nil {
			c.log.Error().Str("checker", c.name).Err(err).Msg("health probe failed")
			c.healthy.Store(0)
			return
		}
		c.healthy.Store(1)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// Aggregate folds component checkers into one service-level flag and logs
// transitions.
type Aggregate struct {
	healthy atomic.Int32
	deps    []Checker
	log     zerolog.Logger
}

// NewAggregate starts unhealthy until every dependency reports healthy.
func NewAggregate(log zerolog.Logger, deps ...Checker) *Aggregate {
	a := &Aggregate{deps: deps, log: log}
	a.healthy.Store(0)
	return a
}

// IsHealthy returns the cached service health.
func (a *Aggregate) IsHealthy() bool { return a.healthy.Load() == 1 }

// Start periodically re-evaluates dependency health until ctx is canceled.
func (a *Aggregate) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := int32(0)
	eval := func() {
		all := true
		for _, c := range a.deps {
			if !c.IsHealthy() {
				all = false
			}
		}
		if all {
			a.healthy.Store(1)
		} else {
			a.healthy.Store(0)
		}
		cur := a.healthy.Load()
		if cur != prev {
			if cur == 1 {
				a.log.Info().Msg("service health: UP")
			} else {
				a.log.Warn().Msg("service health: DOWN")
			}
			prev = cur
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}
