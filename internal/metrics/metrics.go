package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Stream consumption metrics
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollwatch_updates_total",
			Help: "Total number of account updates received, by classified kind",
		},
		[]string{"kind"},
	)

	DecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollwatch_decode_failures_total",
			Help: "Total number of poll account payloads that failed to decode",
		},
	)

	// Persistence metrics
	UpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollwatch_upserts_total",
			Help: "Total number of poll upserts attempted, by status",
		},
		[]string{"status"},
	)

	UpsertDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pollwatch_upsert_duration_seconds",
			Help:    "Duration of poll upsert operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Sink queue metrics
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pollwatch_sink_queue_depth",
			Help: "Current depth of the persistence queue",
		},
	)

	QueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pollwatch_sink_queue_capacity",
			Help: "Maximum capacity of the persistence queue",
		},
	)
)
