package rinktracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checkinsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "rink_tracker",
		Name:      "checkins_total",
		Help:      "Visit check-ins by verification outcome.",
	},
	[]string{"verified"},
)
