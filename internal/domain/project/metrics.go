package project

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomeRejected    = "rejected"
	outcomeUnpersisted = "unpersisted"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rerx_store_mutations_total",
		Help: "Store mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	persistDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rerx_store_persist_duration_seconds",
		Help:    "Time spent writing the serialized project list",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	loadFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rerx_store_load_fallbacks_total",
		Help: "Loads that fell back to an empty project list, by reason",
	}, []string{"reason"})
)
