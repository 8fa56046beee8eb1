// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package recommend

import (
	"context"

	"github.com/tomtom215/endless/internal/cache"
	"github.com/tomtom215/endless/internal/catalog"
	"github.com/tomtom215/endless/internal/recommend/selection"
)

// ScoredRecord is a catalog record with its preference score.
type ScoredRecord struct {
	// Record is the catalog entry.
	Record catalog.Record `json:"record"`

	// Score is the dot product of the learned weights with the record's
	// feature vector. Higher is better; the scale is unbounded.
	Score float64 `json:"score"`

	// Rank is the 1-based position in the returned list.
	Rank int `json:"rank"`

	// Reasons names the tags contributing most to a positive score.
	Reasons []string `json:"reasons,omitempty"`
}

// Reranker modifies a ranked list for diversity or other objectives.
type Reranker interface {
	// Name returns the reranker identifier (e.g., "mmr").
	Name() string

	// Rerank reorders records that are already sorted by score and returns
	// up to k of them.
	Rerank(ctx context.Context, records []ScoredRecord, k int) []ScoredRecord
}

// PairView is a selected pair with both records resolved.
type PairView struct {
	selection.Selection

	First    catalog.Record     `json:"first"`
	Second   catalog.Record     `json:"second"`
	Progress selection.Progress `json:"progress"`
}

// Stats describes an engine for observability.
type Stats struct {
	// Records is the number of catalog records loaded.
	Records int `json:"records"`

	// Features is the dictionary size.
	Features int `json:"features"`

	// Decisions counts weight-changing choices.
	Decisions int `json:"decisions"`

	// Comparisons counts every recorded choice, skips included.
	Comparisons int `json:"comparisons"`

	// ModelVersion increases on every weight change.
	ModelVersion uint64 `json:"model_version"`

	// Refinement reports whether the session is past its target.
	Refinement bool `json:"refinement"`

	// RarityEnabled reports whether updates use tag importance.
	RarityEnabled bool `json:"rarity_enabled"`

	// Confidence is the current overall confidence.
	Confidence float64 `json:"confidence"`

	// ScoreCache and EncodingCache are cache hit/miss counters.
	ScoreCache    cache.MemoStats `json:"score_cache"`
	EncodingCache cache.MemoStats `json:"encoding_cache"`
}
