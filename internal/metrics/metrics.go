// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog Metrics
	CatalogFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "endless_catalog_fetch_total",
			Help: "Total number of catalog fetch attempts",
		},
		[]string{"status"}, // "success", "error", "rejected"
	)

	CatalogFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "endless_catalog_fetch_duration_seconds",
			Help:    "Duration of catalog fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "endless_catalog_records",
			Help: "Number of records in the most recently loaded catalog",
		},
	)

	// Learning Metrics
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "endless_comparisons_total",
			Help: "Total number of recorded comparison outcomes",
		},
		[]string{"outcome"}, // "first", "second", "both_liked", "both_disliked", "skip"
	)

	PairSelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "endless_pair_selections_total",
			Help: "Total number of pairs selected by phase",
		},
		[]string{"phase"},
	)

	PairSelectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "endless_pair_selection_duration_seconds",
			Help:    "Time spent choosing the next pair in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"phase"},
	)

	ModelConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "endless_model_confidence",
			Help:    "Model confidence observed after each comparison",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	// Snapshot Storage Metrics
	SnapshotOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "endless_snapshot_operations_total",
			Help: "Total number of snapshot store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	SnapshotOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "endless_snapshot_operation_duration_seconds",
			Help:    "Duration of snapshot store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	// Session Metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "endless_active_sessions",
			Help: "Current number of live learning sessions",
		},
	)

	SessionsEvictedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "endless_sessions_evicted_total",
			Help: "Total number of sessions removed from the registry",
		},
		[]string{"reason"}, // "idle", "capacity", "deleted"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "endless_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "endless_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "endless_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "endless_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "endless_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordCatalogFetch records a catalog fetch attempt
func RecordCatalogFetch(status string, duration time.Duration) {
	CatalogFetchTotal.WithLabelValues(status).Inc()
	CatalogFetchDuration.Observe(duration.Seconds())
}

// SetCatalogRecords sets the size of the loaded catalog
func SetCatalogRecords(n int) {
	CatalogRecords.Set(float64(n))
}

// RecordComparison counts one comparison outcome
func RecordComparison(outcome string) {
	ComparisonsTotal.WithLabelValues(outcome).Inc()
}

// RecordPairSelection records which phase produced a pair and how long it took
func RecordPairSelection(phase string, duration time.Duration) {
	PairSelectionsTotal.WithLabelValues(phase).Inc()
	PairSelectionDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// ObserveConfidence records a confidence reading in [0, 1]
func ObserveConfidence(v float64) {
	ModelConfidence.Observe(v)
}

// RecordSnapshotOperation records a snapshot store call
func RecordSnapshotOperation(backend, operation, status string, duration time.Duration) {
	SnapshotOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	SnapshotOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// SetActiveSessions sets the live session gauge
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// RecordSessionEvicted counts a session leaving the registry
func RecordSessionEvicted(reason string) {
	SessionsEvictedTotal.WithLabelValues(reason).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBreakerTransition records a circuit breaker state change. state is
// the numeric value of the new state.
func RecordBreakerTransition(name, from, to string, state int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
