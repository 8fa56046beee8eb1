// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package rarity weights tags by how rare they are across the catalog.
//
// Document frequency counts records in which a tag is present with a positive
// weight (binary presence, vote counts are ignored). The inverse document
// frequency is ln(N/df), so a tag carried by every record scores 0 and rarer
// tags score higher. Learning updates multiply by this importance, which
// lets a single rare shared tag move the model more than a ubiquitous one.
package rarity

import (
	"fmt"
	"math"

	"github.com/tomtom215/endless/internal/cache"
	"github.com/tomtom215/endless/internal/catalog"
)

// Default multiplier bounds applied when smoothing is enabled.
const (
	DefaultMinMultiplier = 0.5
	DefaultMaxMultiplier = 3.0
)

// Config controls how raw idf values become multipliers.
type Config struct {
	// MinMultiplier is the lower clamp for smoothed importance.
	MinMultiplier float64 `json:"min_multiplier"`

	// MaxMultiplier is the upper clamp for smoothed importance.
	MaxMultiplier float64 `json:"max_multiplier"`

	// Smoothing clamps importance into [MinMultiplier, MaxMultiplier].
	// Without it the raw idf is returned, including 0 for universal tags.
	Smoothing bool `json:"smoothing"`
}

// DefaultConfig returns smoothing enabled with [0.5, 3.0] bounds.
func DefaultConfig() Config {
	return Config{
		MinMultiplier: DefaultMinMultiplier,
		MaxMultiplier: DefaultMaxMultiplier,
		Smoothing:     true,
	}
}

// Validate checks the multiplier bounds.
func (c Config) Validate() error {
	if c.MinMultiplier <= 0 {
		return fmt.Errorf("rarity.min_multiplier must be positive, got %f", c.MinMultiplier)
	}
	if c.MaxMultiplier < c.MinMultiplier {
		return fmt.Errorf("rarity.max_multiplier must be >= rarity.min_multiplier, got %f < %f",
			c.MaxMultiplier, c.MinMultiplier)
	}
	return nil
}

// Analysis is the per-catalog frequency table.
type Analysis struct {
	Fingerprint       catalog.Fingerprint `json:"fingerprint"`
	TotalRecords      int                 `json:"total_records"`
	DocumentFrequency map[string]int      `json:"document_frequency"`
	InverseFrequency  map[string]float64  `json:"inverse_frequency"`
}

// Analyze computes document and inverse document frequencies for records.
func Analyze(records []catalog.Record) *Analysis {
	a := &Analysis{
		Fingerprint:       catalog.FingerprintOf(records),
		TotalRecords:      len(records),
		DocumentFrequency: make(map[string]int),
		InverseFrequency:  make(map[string]float64),
	}

	for i := range records {
		for name, weight := range records[i].Tags {
			if weight > 0 {
				a.DocumentFrequency[name]++
			}
		}
	}

	n := float64(a.TotalRecords)
	for name, df := range a.DocumentFrequency {
		a.InverseFrequency[name] = math.Log(n / float64(df))
	}
	return a
}

// Analyzer serves importance multipliers for the most recently analyzed catalog.
// It is not safe for concurrent use; the analysis cache may be shared.
type Analyzer struct {
	cfg     Config
	current *Analysis
	cache   *cache.Memo[catalog.Fingerprint, *Analysis]
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSharedCache reuses analyses across analyzers, keyed by catalog fingerprint.
func WithSharedCache(m *cache.Memo[catalog.Fingerprint, *Analysis]) Option {
	return func(a *Analyzer) {
		if m != nil {
			a.cache = m
		}
	}
}

// NewAnalyzer creates an analyzer. Invalid bounds fall back to defaults.
func NewAnalyzer(cfg Config, opts ...Option) *Analyzer {
	if cfg.Validate() != nil {
		smoothing := cfg.Smoothing
		cfg = DefaultConfig()
		cfg.Smoothing = smoothing
	}
	a := &Analyzer{
		cfg:   cfg,
		cache: cache.NewMemo[catalog.Fingerprint, *Analysis](1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewSharedCache returns an analysis cache suitable for WithSharedCache.
func NewSharedCache() *cache.Memo[catalog.Fingerprint, *Analysis] {
	return cache.NewMemo[catalog.Fingerprint, *Analysis](1)
}

// Analyze makes records the current catalog. An unchanged fingerprint returns
// the cached analysis without recounting.
func (a *Analyzer) Analyze(records []catalog.Record) *Analysis {
	fp := catalog.FingerprintOf(records)
	a.current = a.cache.GetOrCompute(fp, func() *Analysis {
		return Analyze(records)
	})
	return a.current
}

// Current returns the active analysis, or nil before the first Analyze.
func (a *Analyzer) Current() *Analysis {
	return a.current
}

// Config returns the active configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Configure replaces the multiplier bounds and smoothing flag.
func (a *Analyzer) Configure(minMultiplier, maxMultiplier float64, smoothing bool) error {
	cfg := Config{MinMultiplier: minMultiplier, MaxMultiplier: maxMultiplier, Smoothing: smoothing}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// Importance returns the multiplier for a feature. Features that were never
// analyzed, are unknown, or have zero document frequency return 1.0.
func (a *Analyzer) Importance(name string) float64 {
	if a.current == nil {
		return 1.0
	}
	if a.current.DocumentFrequency[name] == 0 {
		return 1.0
	}
	idf := a.current.InverseFrequency[name]
	if !a.cfg.Smoothing {
		return idf
	}
	return math.Max(a.cfg.MinMultiplier, math.Min(a.cfg.MaxMultiplier, idf))
}

// DocumentFrequency returns how many records carry the feature.
func (a *Analyzer) DocumentFrequency(name string) int {
	if a.current == nil {
		return 0
	}
	return a.current.DocumentFrequency[name]
}
