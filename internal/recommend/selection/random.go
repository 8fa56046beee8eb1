// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package selection

import (
	"math/rand"
)

// RandomSource is the randomness the selector draws from.
// *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

var _ RandomSource = (*rand.Rand)(nil)

// NewSeededSource returns a deterministic source. Seed 0 maps to 42.
func NewSeededSource(seed int64) RandomSource {
	if seed == 0 {
		seed = 42
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for pair sampling
}
