// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package preference

import (
	"fmt"
	"time"
)

// Snapshot is the serializable learner state.
type Snapshot struct {
	Weights          []float64 `json:"weights"`
	ActualDecisions  int       `json:"actual_decisions"`
	TotalComparisons int       `json:"total_comparisons"`

	// Features lists the dictionary names in ordinal order.
	Features []string `json:"features"`

	SavedAt time.Time `json:"saved_at"`
}

// Snapshot captures weights, counters and the dictionary.
func (m *Model) Snapshot() (Snapshot, error) {
	if !m.Initialized() {
		return Snapshot{}, ErrNotInitialized
	}
	return Snapshot{
		Weights:          m.Weights(),
		ActualDecisions:  m.actualDecisions,
		TotalComparisons: m.totalComparisons,
		Features:         m.dict.Names(),
		SavedAt:          m.now(),
	}, nil
}

// Restore replaces weights and counters from s. A snapshot from a different
// dictionary, or with inconsistent counters, is rejected with
// ErrSnapshotMismatch and the model is left untouched. History is cleared.
//
//nolint:gocritic // snapshot is consumed by value
func (m *Model) Restore(s Snapshot) error {
	if !m.Initialized() {
		return ErrNotInitialized
	}
	if len(s.Weights) != len(m.weights) {
		return fmt.Errorf("%w: %d weights, want %d", ErrSnapshotMismatch, len(s.Weights), len(m.weights))
	}
	if !m.dict.EqualNames(s.Features) {
		return fmt.Errorf("%w: feature names differ", ErrSnapshotMismatch)
	}
	if s.ActualDecisions < 0 || s.TotalComparisons < s.ActualDecisions {
		return fmt.Errorf("%w: counters %d/%d", ErrSnapshotMismatch, s.ActualDecisions, s.TotalComparisons)
	}

	copy(m.weights, s.Weights)
	m.actualDecisions = s.ActualDecisions
	m.totalComparisons = s.TotalComparisons
	m.history = nil
	m.version++
	return nil
}
