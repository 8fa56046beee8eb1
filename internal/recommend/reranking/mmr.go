// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package reranking

import (
	"context"

	"github.com/tomtom215/endless/internal/recommend"
	"github.com/tomtom215/endless/internal/recommend/features"
)

// maxRerankSize limits slice allocations; k is also bounded by len(records).
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking.
// It balances relevance and diversity by iteratively selecting records
// that score well and share few tags with records already selected.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * rel(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - rel(i): the record's score min-max scaled to [0, 1] over the input
//   - sim(i, s): cosine similarity of the two records' tag vote maps
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	lambda float64
}

// NewMMR creates a new MMR reranker. Lambda is clamped to [0, 1].
func NewMMR(lambda float64) *MMR {
	return &MMR{lambda: clampUnit(lambda)}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Lambda returns the relevance weight.
func (m *MMR) Lambda() float64 {
	return m.lambda
}

// Rerank applies MMR to diversify the ranking and returns up to k records.
// Cancellation stops selection early and returns what was selected so far.
func (m *MMR) Rerank(ctx context.Context, records []recommend.ScoredRecord, k int) []recommend.ScoredRecord {
	if len(records) == 0 || k <= 0 {
		return records
	}
	k = boundK(k, len(records))

	if m.lambda >= 1.0 {
		return records[:k]
	}

	relevance := scaledScores(records)
	similarities := buildSimilarityMatrix(records)

	selected := make([]recommend.ScoredRecord, 0, k)
	selectedIndices := make([]int, 0, k)
	taken := make([]bool, len(records))

	for len(selected) < k {
		if ctx.Err() != nil {
			break
		}

		bestIdx := -1
		var bestMMR float64
		for i := range records {
			if taken[i] {
				continue
			}

			maxSim := 0.0
			for _, j := range selectedIndices {
				if sim := similarities[i][j]; sim > maxSim {
					maxSim = sim
				}
			}

			mmrScore := m.lambda*relevance[i] - (1-m.lambda)*maxSim
			if bestIdx < 0 || mmrScore > bestMMR {
				bestMMR = mmrScore
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}

		taken[bestIdx] = true
		selected = append(selected, records[bestIdx])
		selectedIndices = append(selectedIndices, bestIdx)
	}

	return selected
}

// buildSimilarityMatrix computes pairwise tag cosine similarity.
func buildSimilarityMatrix(records []recommend.ScoredRecord) [][]float64 {
	n := len(records)
	similarities := make([][]float64, n)
	for i := range similarities {
		similarities[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := features.Cosine(records[i].Record.Tags, records[j].Record.Tags)
			similarities[i][j] = sim
			similarities[j][i] = sim
		}
	}
	return similarities
}

// scaledScores min-max scales scores to [0, 1]. Equal scores all map to 1.
func scaledScores(records []recommend.ScoredRecord) []float64 {
	lo, hi := records[0].Score, records[0].Score
	for i := range records {
		lo = min(lo, records[i].Score)
		hi = max(hi, records[i].Score)
	}

	out := make([]float64, len(records))
	for i := range records {
		if hi == lo {
			out[i] = 1
			continue
		}
		out[i] = (records[i].Score - lo) / (hi - lo)
	}
	return out
}

func boundK(k, n int) int {
	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > n {
		k = n
	}
	return k
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Ensure MMR implements the interface.
var _ recommend.Reranker = (*MMR)(nil)
