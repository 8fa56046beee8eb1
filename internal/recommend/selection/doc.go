// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package selection chooses which pair of records to compare next.
//
// # Phases
//
// The selector moves through three phases as decisions accumulate:
//
//   - Bootstrap: the first few decisions use uniformly random unused pairs so
//     the model sees a broad sample before it is trusted.
//   - Guided: candidates are drawn from the top-scoring slice of the catalog
//     (50%, then 30%, then 20% as decisions grow) and the sampled pair whose
//     predicted outcome is closest to a coin flip wins. The number of pairs
//     sampled comes from a confidence-weighted mix of depth buckets.
//   - Refinement: opt-in after the target is reached. An exhaustive search
//     over a small top slice, where old pairs may be shown again once they
//     fall out of the recency window.
//
// # Filters
//
// A pair is never shown twice outside refinement, and pairs that look like
// the same game (matching normalized names or near-identical tag profiles)
// are never shown at all.
//
// # Determinism
//
// All randomness comes from the injected RandomSource, so a seeded source
// reproduces the exact pair sequence.
package selection
