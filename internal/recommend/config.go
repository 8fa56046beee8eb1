// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package recommend

import (
	"fmt"

	"github.com/tomtom215/endless/internal/recommend/preference"
	"github.com/tomtom215/endless/internal/recommend/rarity"
	"github.com/tomtom215/endless/internal/recommend/selection"
)

// Config contains all configuration for a learning session engine.
type Config struct {
	// Learner contains the preference model hyperparameters.
	Learner preference.Config `json:"learner"`

	// Rarity controls tag-rarity weighting of learning updates.
	Rarity RarityConfig `json:"rarity"`

	// Selection contains pair selection parameters.
	Selection selection.Config `json:"selection"`

	// Diversity contains parameters for diversity reranking.
	Diversity DiversityConfig `json:"diversity"`

	// NormalizeFeatures divides each tag weight by that tag's catalog maximum
	// so every feature value lies in (0, 1]. Off by default: feature values
	// are the raw tag weights.
	NormalizeFeatures bool `json:"normalize_features"`

	// Seed is the random seed for deterministic pair selection.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// RarityConfig controls the tag rarity analyzer.
type RarityConfig struct {
	// Enabled multiplies single-winner updates by per-tag importance.
	Enabled bool `json:"enabled"`

	// MinMultiplier is the lower importance clamp when smoothing.
	MinMultiplier float64 `json:"min_multiplier"`

	// MaxMultiplier is the upper importance clamp when smoothing.
	MaxMultiplier float64 `json:"max_multiplier"`

	// Smoothing clamps importance into [MinMultiplier, MaxMultiplier].
	Smoothing bool `json:"smoothing"`
}

// Analyzer returns the analyzer configuration.
func (r RarityConfig) Analyzer() rarity.Config {
	return rarity.Config{
		MinMultiplier: r.MinMultiplier,
		MaxMultiplier: r.MaxMultiplier,
		Smoothing:     r.Smoothing,
	}
}

// DiversityConfig contains parameters for diversity reranking.
type DiversityConfig struct {
	// MMRLambda balances relevance (1.0) against diversity (0.0).
	MMRLambda float64 `json:"mmr_lambda"`

	// DefaultK is the ranking length when none is requested.
	DefaultK int `json:"default_k"`

	// MaxK bounds requested ranking lengths.
	MaxK int `json:"max_k"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Learner: preference.DefaultConfig(),
		Rarity: RarityConfig{
			Enabled:       true,
			MinMultiplier: rarity.DefaultMinMultiplier,
			MaxMultiplier: rarity.DefaultMaxMultiplier,
			Smoothing:     true,
		},
		Selection: selection.DefaultConfig(),
		Diversity: DiversityConfig{
			MMRLambda: 0.7,
			DefaultK:  20,
			MaxK:      200,
		},
		NormalizeFeatures: false,
		Seed:              42,
	}
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if err := c.Learner.Validate(); err != nil {
		return fmt.Errorf("learner: %w", err)
	}
	if err := c.Rarity.Analyzer().Validate(); err != nil {
		return err
	}
	if err := c.Selection.Validate(); err != nil {
		return fmt.Errorf("selection: %w", err)
	}
	if c.Diversity.MMRLambda < 0 || c.Diversity.MMRLambda > 1 {
		return fmt.Errorf("diversity.mmr_lambda must be in [0, 1], got %f", c.Diversity.MMRLambda)
	}
	if c.Diversity.DefaultK <= 0 {
		return fmt.Errorf("diversity.default_k must be positive, got %d", c.Diversity.DefaultK)
	}
	if c.Diversity.MaxK < c.Diversity.DefaultK {
		return fmt.Errorf("diversity.max_k (%d) must be >= diversity.default_k (%d)",
			c.Diversity.MaxK, c.Diversity.DefaultK)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ClampK bounds a requested ranking length, substituting DefaultK for k <= 0.
func (c *Config) ClampK(k int) int {
	if k <= 0 {
		return c.Diversity.DefaultK
	}
	if k > c.Diversity.MaxK {
		return c.Diversity.MaxK
	}
	return k
}
