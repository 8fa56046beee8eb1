// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

/*
Package metrics provides Prometheus instrumentation for Endless.

Collectors are registered with the default registry at package init via
promauto and are exposed by the API server at /metrics.

# Available Metrics

Catalog:
  - endless_catalog_fetch_total (counter, labels: status)
  - endless_catalog_fetch_duration_seconds (histogram)
  - endless_catalog_records (gauge)

Learning:
  - endless_comparisons_total (counter, labels: outcome)
  - endless_pair_selections_total (counter, labels: phase)
  - endless_pair_selection_duration_seconds (histogram, labels: phase)
  - endless_model_confidence (histogram)

Storage:
  - endless_snapshot_operations_total (counter, labels: backend, operation, status)
  - endless_snapshot_operation_duration_seconds (histogram, labels: backend, operation)

Sessions and API:
  - endless_active_sessions (gauge)
  - endless_sessions_evicted_total (counter, labels: reason)
  - endless_api_requests_total (counter, labels: method, endpoint, status_code)
  - endless_api_request_duration_seconds (histogram, labels: method, endpoint)
  - endless_api_active_requests (gauge)

Circuit breaker:
  - endless_circuit_breaker_state (gauge, labels: name)
  - endless_circuit_breaker_state_transitions_total (counter, labels: name, from_state, to_state)

# Usage

Callers use the Record* and Set* helpers rather than touching collectors:

	start := time.Now()
	pair, err := selector.Next()
	metrics.RecordPairSelection(pair.Phase.String(), time.Since(start))

Endpoint labels should be route patterns, not raw paths, to keep
cardinality bounded.
*/
package metrics
