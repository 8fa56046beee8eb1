// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package features

import (
	"github.com/tomtom215/endless/internal/catalog"
)

// FeatureMaxima returns the largest positive weight seen for each tag.
func FeatureMaxima(records []catalog.Record) map[string]float64 {
	maxima := make(map[string]float64)
	for i := range records {
		for name, weight := range records[i].Tags {
			if weight > maxima[name] {
				maxima[name] = weight
			}
		}
	}
	return maxima
}

// Normalize divides each weight by the catalog-wide maximum for that feature,
// mapping values into [0, 1]. Features with no recorded maximum become 0.
func Normalize(weights, perFeatureMax map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for name, w := range weights {
		maxW := perFeatureMax[name]
		if maxW <= 0 {
			out[name] = 0
			continue
		}
		out[name] = w / maxW
	}
	return out
}
