// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

/*
Package cache provides small generic in-memory structures used on the
pair selection and ranking hot paths.

  - Memo: a thread-safe memo table with hit/miss counters. The engine uses
    it for per-record score and encoding caches, and the rarity analyzer
    shares one across sessions keyed by catalog fingerprint.
  - TopK: a bounded min-heap that keeps the k highest-scoring values,
    used for uncertainty pools and the concentration term of confidence.

# Thread Safety

Memo guards its map with a sync.RWMutex. TopK is single-goroutine; callers
build one per query.

# Usage Example

	scores := cache.NewMemo[int, float64](len(records))
	s := scores.GetOrCompute(id, func() float64 { return model.Score(vec) })

	best := cache.TopKValues(ids, 10, func(id int) float64 { return scoreOf(id) })
*/
package cache
