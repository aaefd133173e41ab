package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	datasetsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabcli_datasets_loaded_total",
		Help: "Number of datasets loaded into the store.",
	})

	transformsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabcli_transforms_total",
		Help: "Number of transform requests by kind and result.",
	}, []string{"kind", "result"})

	statsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabcli_stats_requests_total",
		Help: "Number of statistics and correlation requests by endpoint.",
	}, []string{"endpoint"})

	transformDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tabcli_transform_duration_seconds",
		Help:    "Transform execution time by kind.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)
