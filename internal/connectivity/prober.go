package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	defaultProbeInterval = 30 * time.Second
	defaultProbeTimeout  = 5 * time.Second
	maxOfflineBackoff    = 2 * time.Minute
)

// ProbeFunc checks reachability once. A nil error means online.
type ProbeFunc func(ctx context.Context) error

// Prober is a Monitor that discovers the level itself by probing an
// endpoint. While online it probes at a steady interval; after a failure
// it retries on an exponential backoff so a flapping network is not
// hammered.
type Prober struct {
	inner    *Manual
	probe    ProbeFunc
	interval time.Duration
	log      zerolog.Logger
}

// ProberOption customizes a Prober.
type ProberOption func(*Prober)

// WithProbeInterval sets the steady-state spacing between probes.
func WithProbeInterval(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithProbeFunc replaces the HTTP probe entirely.
func WithProbeFunc(fn ProbeFunc) ProberOption {
	return func(p *Prober) {
		if fn != nil {
			p.probe = fn
		}
	}
}

// WithProberLogger attaches a logger to the prober.
func WithProberLogger(log zerolog.Logger) ProberOption {
	return func(p *Prober) { p.log = log }
}

// NewProber builds a prober against the given URL. It starts offline and
// flips online on the first successful probe after Run is called.
func NewProber(url string, opts ...ProberOption) *Prober {
	p := &Prober{
		inner:    NewManual(false),
		probe:    httpProbe(url),
		interval: defaultProbeInterval,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Online reports the last probed level.
func (p *Prober) Online() bool { return p.inner.Online() }

// Subscribe returns a channel of future transitions.
func (p *Prober) Subscribe() <-chan Event { return p.inner.Subscribe() }

// Run probes until ctx is canceled. It probes once immediately so callers
// get an initial level without waiting a full interval.
func (p *Prober) Run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = maxOfflineBackoff
	bo.MaxElapsedTime = 0

	for {
		err := p.probe(ctx)
		if ctx.Err() != nil {
			return
		}
		online := err == nil

		wasOnline := p.inner.Online()
		p.inner.Set(online)
		if online != wasOnline {
			if online {
				p.log.Info().Msg("connectivity restored")
			} else {
				p.log.Warn().Err(err).Msg("connectivity lost")
			}
		}

		var wait time.Duration
		if online {
			bo.Reset()
			wait = p.interval
		} else {
			wait = bo.NextBackOff()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func httpProbe(url string) ProbeFunc {
	client := &http.Client{Timeout: defaultProbeTimeout}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("probe %s: status %d", url, resp.StatusCode)
		}
		return nil
	}
}

var _ Monitor = (*Prober)(nil)
