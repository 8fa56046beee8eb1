// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package reranking

import (
	"context"
	"math"

	"github.com/tomtom215/endless/internal/recommend"
	"github.com/tomtom215/endless/internal/recommend/preference"
)

// klEpsilon stands in for zero probabilities in the recommended distribution.
const klEpsilon = 1e-10

// CalibrationConfig contains parameters for calibrated reranking.
type CalibrationConfig struct {
	// Lambda balances relevance (1.0) against calibration (0.0).
	Lambda float64 `json:"lambda"`

	// Target is the desired tag distribution of the returned list.
	// It is normalized to sum to 1. Empty disables calibration.
	Target map[string]float64 `json:"target"`
}

// DefaultCalibrationConfig returns defaults with no target.
func DefaultCalibrationConfig() CalibrationConfig {
	return CalibrationConfig{Lambda: 0.7}
}

// Calibration reorders a ranking so the tags of the selected records appear
// in roughly the proportions of a target distribution, typically the user's
// liked tags. It keeps one favourite tag from crowding out the others.
//
// Reference:
// Steck, H. (2018). "Calibrated Recommendations." RecSys 2018.
type Calibration struct {
	lambda float64
	target map[string]float64
}

// NewCalibration creates a calibration reranker.
//
//nolint:gocritic // config is consumed by value
func NewCalibration(cfg CalibrationConfig) *Calibration {
	c := &Calibration{lambda: clampUnit(cfg.Lambda)}
	c.SetTarget(cfg.Target)
	return c
}

// Name returns the reranker identifier.
func (c *Calibration) Name() string {
	return "calibration"
}

// SetTarget replaces the target distribution. Non-positive entries are dropped.
func (c *Calibration) SetTarget(target map[string]float64) {
	dist := make(map[string]float64, len(target))
	for tag, w := range target {
		if w > 0 {
			dist[tag] = w
		}
	}
	normalizeDistribution(dist)
	c.target = dist
}

// Target returns a copy of the normalized target distribution.
func (c *Calibration) Target() map[string]float64 {
	out := make(map[string]float64, len(c.target))
	for k, v := range c.target {
		out[k] = v
	}
	return out
}

// TargetFromSummary builds a target distribution from the liked tags of a
// preference summary, proportional to their weights.
//
//nolint:gocritic // summary is read-only
func TargetFromSummary(s preference.Summary) map[string]float64 {
	target := make(map[string]float64, len(s.Liked))
	for _, fw := range s.Liked {
		if fw.Weight > 0 {
			target[fw.Name] = fw.Weight
		}
	}
	return target
}

// Rerank greedily selects up to k records, trading each record's relevance
// against how close the selected tag mix stays to the target.
func (c *Calibration) Rerank(ctx context.Context, records []recommend.ScoredRecord, k int) []recommend.ScoredRecord {
	if len(records) <= 1 || k <= 0 {
		return records
	}
	k = boundK(k, len(records))

	if c.lambda >= 1.0 || len(c.target) == 0 {
		return records[:k]
	}

	relevance := scaledScores(records)
	counts := make(map[string]float64)
	var total float64

	result := make([]recommend.ScoredRecord, 0, k)
	taken := make([]bool, len(records))

	for len(result) < k {
		if ctx.Err() != nil {
			break
		}

		bestIdx := -1
		bestScore := math.Inf(-1)
		for i := range records {
			if taken[i] {
				continue
			}
			calib := c.calibrationScore(counts, total, records[i].Record.Tags)
			combined := c.lambda*relevance[i] + (1-c.lambda)*calib
			if combined > bestScore {
				bestScore = combined
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		taken[bestIdx] = true
		result = append(result, records[bestIdx])
		for tag, w := range records[bestIdx].Record.Tags {
			if w > 0 {
				counts[tag]++
				total++
			}
		}
	}

	return result
}

// calibrationScore is 1 - min(KL(target || selected+candidate), 1).
func (c *Calibration) calibrationScore(counts map[string]float64, total float64, candidate map[string]float64) float64 {
	var added float64
	for _, w := range candidate {
		if w > 0 {
			added++
		}
	}
	denom := total + added
	if denom == 0 {
		return 0
	}

	var kl float64
	for tag, p := range c.target {
		q := counts[tag]
		if w, ok := candidate[tag]; ok && w > 0 {
			q++
		}
		q /= denom
		if q <= 0 {
			q = klEpsilon
		}
		kl += p * math.Log(p/q)
	}
	return 1.0 - math.Min(math.Max(kl, 0), 1.0)
}

// normalizeDistribution scales dist in place to sum to 1.
func normalizeDistribution(dist map[string]float64) {
	var total float64
	for _, v := range dist {
		total += v
	}
	if total <= 0 {
		return
	}
	for k := range dist {
		dist[k] /= total
	}
}

// Ensure Calibration implements the interface.
var _ recommend.Reranker = (*Calibration)(nil)
