package rinktracker

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/connectivity"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/localstore"
	"github.com/MikeOG444/rink-tracker-pwa-sub000/internal/remote/httpstore"
)

// Config is the environment-driven client configuration. Every field reads
// from the RINKTRACKER_ prefix, e.g. RINKTRACKER_SERVICE_URL.
type Config struct {
	// ServiceURL is the base URL of the remote document service.
	ServiceURL string `envconfig:"SERVICE_URL" required:"true"`

	// APIKey authenticates against the service. Empty means the service
	// runs without auth (dev mode).
	APIKey string `envconfig:"API_KEY"`

	// QueuePath is the SQLite file backing the offline queue. Empty keeps
	// the queue in memory, losing pending writes on restart.
	QueuePath string `envconfig:"QUEUE_PATH"`

	// CacheTTL bounds the staleness of cached reads.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// HTTPTimeout bounds one remote store request.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// ProbeInterval is the steady-state spacing of connectivity probes.
	ProbeInterval time.Duration `envconfig:"PROBE_INTERVAL" default:"30s"`

	// VerifyThresholdFeet is the check-in verification distance.
	VerifyThresholdFeet float64 `envconfig:"VERIFY_THRESHOLD_FEET" default:"500"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("RINKTRACKER", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDefaults backfills zero values so a hand-built Config behaves
// like one loaded from the environment.
func (c *Config) resolveDefaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = 30 * time.Second
	}
	if c.VerifyThresholdFeet <= 0 {
		c.VerifyThresholdFeet = DefaultVerifyThresholdFeet
	}
}

// Open builds a fully wired Client from configuration: HTTP remote store,
// SQLite-backed offline queue when a path is configured, and a
// connectivity prober against the service health endpoint. Extra options
// are applied after the config-derived ones, so they win on conflict.
func Open(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ServiceURL == "" {
		return nil, fmt.Errorf("open: service url is required")
	}
	cfg.resolveDefaults()

	storeOpts := []httpstore.Option{httpstore.WithTimeout(cfg.HTTPTimeout)}
	if cfg.APIKey != "" {
		storeOpts = append(storeOpts, httpstore.WithAPIKey(cfg.APIKey))
	}
	if debugLoggingRequested() {
		storeOpts = append(storeOpts, httpstore.WithTransport(&debugTransport{base: http.DefaultTransport}))
	}
	store := httpstore.New(cfg.ServiceURL, storeOpts...)

	var local localstore.Store
	if cfg.QueuePath != "" {
		var err error
		local, err = localstore.OpenSQLite(cfg.QueuePath)
		if err != nil {
			return nil, fmt.Errorf("open queue store: %w", err)
		}
	} else {
		local = localstore.NewMemory()
	}

	prober := connectivity.NewProber(
		cfg.ServiceURL+"/v1/health",
		connectivity.WithProbeInterval(cfg.ProbeInterval),
	)

	base := []Option{
		WithLocalStore(local),
		WithConnectivity(prober),
		WithCacheTTL(cfg.CacheTTL),
		WithVerifyThresholdFeet(cfg.VerifyThresholdFeet),
	}
	return New(store, append(base, opts...)...), nil
}
