// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCatalogFetch(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		duration time.Duration
	}{
		{name: "success", status: "success", duration: 120 * time.Millisecond},
		{name: "error", status: "error", duration: 2 * time.Second},
		{name: "rejected by breaker", status: "rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(CatalogFetchTotal.WithLabelValues(tt.status))
			RecordCatalogFetch(tt.status, tt.duration)
			after := testutil.ToFloat64(CatalogFetchTotal.WithLabelValues(tt.status))
			if after-before != 1 {
				t.Errorf("fetch counter delta = %v, want 1", after-before)
			}
		})
	}
}

func TestSetCatalogRecords(t *testing.T) {
	SetCatalogRecords(42)
	if got := testutil.ToFloat64(CatalogRecords); got != 42 {
		t.Errorf("CatalogRecords = %v, want 42", got)
	}
}

func TestRecordComparison(t *testing.T) {
	for _, outcome := range []string{"first", "second", "both_liked", "both_disliked", "skip"} {
		t.Run(outcome, func(t *testing.T) {
			before := testutil.ToFloat64(ComparisonsTotal.WithLabelValues(outcome))
			RecordComparison(outcome)
			RecordComparison(outcome)
			after := testutil.ToFloat64(ComparisonsTotal.WithLabelValues(outcome))
			if after-before != 2 {
				t.Errorf("comparison delta = %v, want 2", after-before)
			}
		})
	}
}

func TestRecordPairSelection(t *testing.T) {
	before := testutil.ToFloat64(PairSelectionsTotal.WithLabelValues("guided"))
	RecordPairSelection("guided", 300*time.Microsecond)
	if got := testutil.ToFloat64(PairSelectionsTotal.WithLabelValues("guided")) - before; got != 1 {
		t.Errorf("selection delta = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(PairSelectionDuration); n == 0 {
		t.Error("expected at least one pair selection histogram series")
	}
}

func TestObserveConfidence(t *testing.T) {
	for _, v := range []float64{0, 0.35, 0.99, 1} {
		ObserveConfidence(v)
	}
	if n := testutil.CollectAndCount(ModelConfidence); n != 1 {
		t.Errorf("confidence series = %d, want 1", n)
	}
}

func TestRecordSnapshotOperation(t *testing.T) {
	tests := []struct {
		backend, op, status string
	}{
		{"file", "save", "success"},
		{"badger", "load", "not_found"},
		{"memory", "delete", "error"},
	}
	for _, tt := range tests {
		t.Run(tt.backend+"_"+tt.op, func(t *testing.T) {
			c := SnapshotOperationsTotal.WithLabelValues(tt.backend, tt.op, tt.status)
			before := testutil.ToFloat64(c)
			RecordSnapshotOperation(tt.backend, tt.op, tt.status, 5*time.Millisecond)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("snapshot delta = %v, want 1", got)
			}
		})
	}
}

func TestSessionMetrics(t *testing.T) {
	SetActiveSessions(7)
	if got := testutil.ToFloat64(ActiveSessions); got != 7 {
		t.Errorf("ActiveSessions = %v, want 7", got)
	}

	before := testutil.ToFloat64(SessionsEvictedTotal.WithLabelValues("idle"))
	RecordSessionEvicted("idle")
	if got := testutil.ToFloat64(SessionsEvictedTotal.WithLabelValues("idle")) - before; got != 1 {
		t.Errorf("eviction delta = %v, want 1", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{"next pair", "GET", "/api/v1/sessions/{id}/pair", "200", 2 * time.Millisecond},
		{"choice", "POST", "/api/v1/sessions/{id}/choices", "200", 3 * time.Millisecond},
		{"missing session", "GET", "/api/v1/sessions/{id}", "404", time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode)
			before := testutil.ToFloat64(c)
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("request delta = %v, want 1", got)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+2 {
		t.Errorf("active = %v, want %v", got, start+2)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("active = %v, want %v", got, start)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("catalog", "closed", "open", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("catalog")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("catalog", "closed", "open")); got < 1 {
		t.Errorf("transitions = %v, want >= 1", got)
	}

	RecordBreakerTransition("catalog", "open", "half-open", 1)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("catalog")); got != 1 {
		t.Errorf("state = %v, want 1", got)
	}
}

// TestMetricGathering lints everything registered with the default gatherer.
func TestMetricGathering(t *testing.T) {
	RecordCatalogFetch("success", time.Millisecond)
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Logf("metric lint problem in %s: %s", p.Metric, p.Text)
	}
}
