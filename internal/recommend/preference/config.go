// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package preference

import (
	"fmt"
)

// Config contains model hyperparameters.
type Config struct {
	// LearningRate is the SGD step size.
	// Default: 0.1.
	LearningRate float64 `json:"learning_rate"`

	// BothFactor scales the shared update applied when both records are
	// liked or both disliked.
	// Default: 0.8.
	BothFactor float64 `json:"both_factor"`

	// ReferenceMagnitude is the weight-vector L2 norm at which the magnitude
	// term of confidence saturates.
	// Default: 2.0.
	ReferenceMagnitude float64 `json:"reference_magnitude"`

	// PriorVotes expresses an external prior as an equivalent number of
	// unit-gradient decisions on its strongest feature.
	// Default: 5.
	PriorVotes float64 `json:"prior_votes"`

	// BoostStrength is the feature value used for an explicit boost.
	// Default: 1.0.
	BoostStrength float64 `json:"boost_strength"`

	// ConfidenceWindow is the number of recent decisions inspected by Confidence.
	// Default: 10.
	ConfidenceWindow int `json:"confidence_window"`

	// SummaryThreshold is the minimum |weight| reported by Summary.
	// Default: 0.01.
	SummaryThreshold float64 `json:"summary_threshold"`
}

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return Config{
		LearningRate:       0.1,
		BothFactor:         0.8,
		ReferenceMagnitude: 2.0,
		PriorVotes:         5,
		BoostStrength:      1.0,
		ConfidenceWindow:   10,
		SummaryThreshold:   0.01,
	}
}

// Validate checks the hyperparameters.
func (c Config) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %f", c.LearningRate)
	}
	if c.BothFactor < 0 {
		return fmt.Errorf("both_factor must be non-negative, got %f", c.BothFactor)
	}
	if c.ReferenceMagnitude <= 0 {
		return fmt.Errorf("reference_magnitude must be positive, got %f", c.ReferenceMagnitude)
	}
	if c.PriorVotes < 0 {
		return fmt.Errorf("prior_votes must be non-negative, got %f", c.PriorVotes)
	}
	if c.BoostStrength <= 0 {
		return fmt.Errorf("boost_strength must be positive, got %f", c.BoostStrength)
	}
	if c.ConfidenceWindow < 1 {
		return fmt.Errorf("confidence_window must be positive, got %d", c.ConfidenceWindow)
	}
	if c.SummaryThreshold < 0 {
		return fmt.Errorf("summary_threshold must be non-negative, got %f", c.SummaryThreshold)
	}
	return nil
}

// DecayFactor returns the multiplier applied to all weights before a
// decision, given how many decisions were already made.
func DecayFactor(decisions int) float64 {
	switch {
	case decisions <= 0:
		return 1.0
	case decisions <= 5:
		return 0.98
	case decisions <= 20:
		return 0.96
	default:
		return 0.94
	}
}
