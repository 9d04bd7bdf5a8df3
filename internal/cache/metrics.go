package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rink_tracker",
			Name:      "cache_hits_total",
			Help:      "Cache lookups answered with a fresh entry.",
		},
		[]string{"family"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rink_tracker",
			Name:      "cache_misses_total",
			Help:      "Cache lookups with no resident entry.",
		},
		[]string{"family"},
	)

	cacheExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rink_tracker",
			Name:      "cache_expired_total",
			Help:      "Cache lookups that found only a stale entry.",
		},
		[]string{"family"},
	)
)
