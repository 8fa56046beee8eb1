// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package selection

import (
	"fmt"
)

// Config contains pair selection parameters.
type Config struct {
	// TargetComparisons is the session length before refinement.
	// Progress reports min(TargetComparisons, n choose 2).
	// Default: 20.
	TargetComparisons int `json:"target_comparisons"`

	// BootstrapDecisions is how many decisions use random pairs.
	// Default: 3.
	BootstrapDecisions int `json:"bootstrap_decisions"`

	// MinUncertainty is the guided-search floor below which a random pair is
	// used instead.
	// Default: 0.05.
	MinUncertainty float64 `json:"min_uncertainty"`

	// SimilarityThreshold is the tag cosine above which two records count as
	// the same game.
	// Default: 0.92.
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// RefinementPercentile is the top slice searched in refinement.
	// Default: 0.1.
	RefinementPercentile float64 `json:"refinement_percentile"`

	// RecencyWindow is how many recent comparisons block pair reuse in refinement.
	// Default: 10.
	RecencyWindow int `json:"recency_window"`

	// MaxRandomAttempts caps rejection sampling before a linear scan.
	// Default: 2000.
	MaxRandomAttempts int `json:"max_random_attempts"`

	// ExhaustivePairLimit is the pool pair count up to which random picks
	// enumerate every eligible pair.
	// Default: 20000.
	ExhaustivePairLimit int `json:"exhaustive_pair_limit"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		TargetComparisons:    20,
		BootstrapDecisions:   3,
		MinUncertainty:       0.05,
		SimilarityThreshold:  0.92,
		RefinementPercentile: 0.1,
		RecencyWindow:        10,
		MaxRandomAttempts:    2000,
		ExhaustivePairLimit:  20000,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.TargetComparisons < 1 {
		return fmt.Errorf("target_comparisons must be positive, got %d", c.TargetComparisons)
	}
	if c.BootstrapDecisions < 0 {
		return fmt.Errorf("bootstrap_decisions must be non-negative, got %d", c.BootstrapDecisions)
	}
	if c.MinUncertainty < 0 || c.MinUncertainty > 1 {
		return fmt.Errorf("min_uncertainty must be in [0, 1], got %f", c.MinUncertainty)
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in (0, 1], got %f", c.SimilarityThreshold)
	}
	if c.RefinementPercentile <= 0 || c.RefinementPercentile > 1 {
		return fmt.Errorf("refinement_percentile must be in (0, 1], got %f", c.RefinementPercentile)
	}
	if c.RecencyWindow < 0 {
		return fmt.Errorf("recency_window must be non-negative, got %d", c.RecencyWindow)
	}
	if c.MaxRandomAttempts < 1 {
		return fmt.Errorf("max_random_attempts must be positive, got %d", c.MaxRandomAttempts)
	}
	if c.ExhaustivePairLimit < 1 {
		return fmt.Errorf("exhaustive_pair_limit must be positive, got %d", c.ExhaustivePairLimit)
	}
	return nil
}

// guidedPercentile is the top slice used by guided search.
func guidedPercentile(decisions int) float64 {
	switch {
	case decisions < 7:
		return 0.5
	case decisions < 15:
		return 0.3
	default:
		return 0.2
	}
}
