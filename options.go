package rinktracker

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/connectivity"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/geo"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/localstore"
)

// Option configures a Client during construction in New. Options must be
// deterministic and side-effect free; they run before any background
// goroutine starts.
type Option func(*Client) error

// WithLocalStore sets the durable store backing the offline queue. The
// client takes ownership and closes it on Close. Without this option the
// queue lives in process memory and does not survive restarts.
func WithLocalStore(s localstore.Store) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("local store must not be nil")
		}
		c.local = s
		return nil
	}
}

// WithConnectivity sets the connectivity monitor. A *connectivity.Prober
// passed here is started automatically and stopped on Close. Without this
// option the client assumes it is always online.
func WithConnectivity(m connectivity.Monitor) Option {
	return func(c *Client) error {
		if m == nil {
			return fmt.Errorf("connectivity monitor must not be nil")
		}
		c.monitor = m
		return nil
	}
}

// WithCacheTTL bounds the staleness of cached reads. The value must be
// greater than zero.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) error {
		if ttl <= 0 {
			return fmt.Errorf("cache ttl must be > 0")
		}
		c.cacheTTL = ttl
		return nil
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

// WithGeolocation sets the position provider used by CheckIn. Without it
// every check-in is recorded unverified.
func WithGeolocation(p geo.Provider) Option {
	return func(c *Client) error {
		c.geo = p
		return nil
	}
}

// WithVerifyThresholdFeet overrides the verification distance. The value
// must be greater than zero.
func WithVerifyThresholdFeet(feet float64) Option {
	return func(c *Client) error {
		if feet <= 0 {
			return fmt.Errorf("verify threshold must be > 0 feet")
		}
		c.verifyThresholdFeet = feet
		return nil
	}
}

// WithGeoTimeout bounds a single position measurement during CheckIn.
func WithGeoTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("geo timeout must be > 0")
		}
		c.geoTimeout = d
		return nil
	}
}

// WithClock injects the time source. Tests use it to control cache expiry
// and entity timestamps together.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		c.now = now
		return nil
	}
}
