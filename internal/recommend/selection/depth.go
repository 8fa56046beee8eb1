// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package selection

import (
	"math"
)

// depthBucket is one range of guided sampling depths. Its mixture weight is
// base + slope*confidence, floored at minBucketWeight.
type depthBucket struct {
	name  string
	min   int
	max   int
	base  float64
	slope float64
}

const minBucketWeight = 0.02

// Higher confidence shifts mass toward shallow, focused searches.
var depthBuckets = []depthBucket{
	{name: "ultra_focused", min: 10, max: 25, base: 0.05, slope: 0.35},
	{name: "focused", min: 25, max: 50, base: 0.15, slope: 0.15},
	{name: "balanced", min: 50, max: 75, base: 0.30, slope: 0.00},
	{name: "exploratory", min: 75, max: 100, base: 0.30, slope: -0.20},
	{name: "wide_discovery", min: 100, max: 150, base: 0.20, slope: -0.30},
}

// bucketWeights returns the mixture weights for a confidence in [0, 1].
func bucketWeights(confidence float64) []float64 {
	c := math.Max(0, math.Min(1, confidence))
	weights := make([]float64, len(depthBuckets))
	for i, b := range depthBuckets {
		weights[i] = math.Max(minBucketWeight, b.base+b.slope*c)
	}
	return weights
}

// sampleDepth draws how many candidate pairs guided search evaluates.
func sampleDepth(rng RandomSource, confidence float64) (int, string) {
	weights := bucketWeights(confidence)
	var total float64
	for _, w := range weights {
		total += w
	}

	r := rng.Float64() * total
	chosen := depthBuckets[len(depthBuckets)-1]
	for i, w := range weights {
		if r < w {
			chosen = depthBuckets[i]
			break
		}
		r -= w
	}
	return chosen.min + rng.Intn(chosen.max-chosen.min+1), chosen.name
}
