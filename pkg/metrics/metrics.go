// Package metrics provides Prometheus metrics for the primrose service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteFetchesTotal tracks remote collection fetches by kind and outcome
	RemoteFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "primrose",
			Subsystem: "remote",
			Name:      "fetches_total",
			Help:      "Total number of remote collection fetches by kind and status",
		},
		[]string{"kind", "status"},
	)

	// HTTPRequestsTotal tracks outbound HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "primrose",
			Subsystem: "http_client",
			Name:      "requests_total",
			Help:      "Total number of outbound HTTP requests",
		},
		[]string{"method", "status_code"},
	)

	// HTTPRequestDuration tracks outbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "primrose",
			Subsystem: "http_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	// StoreFallbacksTotal counts collections served from the store after a remote failure
	StoreFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "primrose",
			Subsystem: "reconciler",
			Name:      "store_fallbacks_total",
			Help:      "Total number of reads served from the store after a remote failure",
		},
		[]string{"kind", "status"},
	)

	// WriteThroughFailuresTotal counts remote records that could not be written to the store
	WriteThroughFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "primrose",
			Subsystem: "reconciler",
			Name:      "write_through_failures_total",
			Help:      "Total number of remote records that failed to persist",
		},
		[]string{"kind"},
	)

	// MatchesTotal counts associated record lookups by the level that matched
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "primrose",
			Subsystem: "reconciler",
			Name:      "matches_total",
			Help:      "Associated record lookups by kind and match level",
		},
		[]string{"kind", "level"},
	)

	// LinkOutcomesTotal counts vendor tour link requests by outcome
	LinkOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "primrose",
			Subsystem: "reconciler",
			Name:      "link_outcomes_total",
			Help:      "Vendor tour link requests by outcome",
		},
		[]string{"outcome"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "primrose",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "primrose",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// APIRequestsTotal tracks inbound API requests
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "primrose",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of inbound API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "primrose",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound API requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	// NoticesRecorded tracks notices written to the board
	NoticesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "primrose",
			Subsystem: "notices",
			Name:      "recorded_total",
			Help:      "Total number of recoverable errors recorded on the notice board",
		},
		[]string{"kind"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "primrose",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordHTTPRequest records an outbound HTTP request metric
func RecordHTTPRequest(method, statusCode string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(durationSeconds)
}

func RecordAPIRequest(method, route, statusCode string, durationSeconds float64) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

func RecordNotice(kind string) {
	NoticesRecorded.WithLabelValues(kind).Inc()
}

func RecordRemoteFetch(kind, status string) {
	RemoteFetchesTotal.WithLabelValues(kind, status).Inc()
}

func RecordStoreFallback(kind, status string) {
	StoreFallbacksTotal.WithLabelValues(kind, status).Inc()
}

func RecordWriteThroughFailure(kind string) {
	WriteThroughFailuresTotal.WithLabelValues(kind).Inc()
}

func RecordMatch(kind, level string) {
	MatchesTotal.WithLabelValues(kind, level).Inc()
}

func RecordLinkOutcome(outcome string) {
	LinkOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.Observe(durationSeconds)
}

// ObserveQuery records a database query duration
func ObserveQuery(operation string, durationSeconds float64) {
	DatabaseQueryDuration.WithLabelValues(operation).Observe(durationSeconds)
}
