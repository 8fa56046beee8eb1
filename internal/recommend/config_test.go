// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package recommend

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("default config validates", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() = %v", err)
		}
	})

	t.Run("learner defaults", func(t *testing.T) {
		if cfg.Learner.LearningRate != 0.1 {
			t.Errorf("LearningRate = %f, want 0.1", cfg.Learner.LearningRate)
		}
		if cfg.Selection.TargetComparisons != 20 {
			t.Errorf("TargetComparisons = %d, want 20", cfg.Selection.TargetComparisons)
		}
	})

	t.Run("rarity enabled with smoothing", func(t *testing.T) {
		if !cfg.Rarity.Enabled || !cfg.Rarity.Smoothing {
			t.Error("rarity should be enabled with smoothing by default")
		}
	})

	t.Run("seed is set for determinism", func(t *testing.T) {
		if cfg.Seed == 0 {
			t.Error("Seed = 0, want non-zero for determinism")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "zero learning rate", modify: func(c *Config) { c.Learner.LearningRate = 0 }, wantError: true},
		{name: "negative rarity minimum", modify: func(c *Config) { c.Rarity.MinMultiplier = -1 }, wantError: true},
		{name: "rarity max below min", modify: func(c *Config) { c.Rarity.MaxMultiplier = 0.1 }, wantError: true},
		{name: "zero target", modify: func(c *Config) { c.Selection.TargetComparisons = 0 }, wantError: true},
		{name: "MMR lambda > 1", modify: func(c *Config) { c.Diversity.MMRLambda = 1.5 }, wantError: true},
		{name: "MMR lambda < 0", modify: func(c *Config) { c.Diversity.MMRLambda = -0.5 }, wantError: true},
		{name: "zero default k", modify: func(c *Config) { c.Diversity.DefaultK = 0 }, wantError: true},
		{name: "MaxK less than DefaultK", modify: func(c *Config) { c.Diversity.MaxK = 5; c.Diversity.DefaultK = 10 }, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantError && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	original := DefaultConfig()
	original.Learner.LearningRate = 0.5

	clone := original.Clone()
	if clone.Learner.LearningRate != 0.5 {
		t.Errorf("clone LearningRate = %f, want 0.5", clone.Learner.LearningRate)
	}

	clone.Learner.LearningRate = 0.2
	if original.Learner.LearningRate != 0.5 {
		t.Error("modifying clone affected original")
	}
}

func TestConfig_ClampK(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		in, want int
	}{
		{0, cfg.Diversity.DefaultK},
		{-3, cfg.Diversity.DefaultK},
		{5, 5},
		{cfg.Diversity.MaxK + 1, cfg.Diversity.MaxK},
	}
	for _, tt := range tests {
		if got := cfg.ClampK(tt.in); got != tt.want {
			t.Errorf("ClampK(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestConfig_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"learner", "rarity", "selection", "diversity", "seed"} {
		if _, ok := parsed[key]; !ok {
			t.Errorf("missing %q in %s", key, data)
		}
	}
}
