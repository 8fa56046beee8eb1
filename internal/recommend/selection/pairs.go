// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package selection

import (
	"sort"
	"time"
)

// Pair is an ordered pair of record ids as shown to the user.
type Pair struct {
	First  int `json:"first_id"`
	Second int `json:"second_id"`
}

// Key returns the unordered identity of the pair.
func (p Pair) Key() PairKey {
	return NewPairKey(p.First, p.Second)
}

// PairKey is an unordered pair of record ids with Lo <= Hi.
type PairKey struct {
	Lo int
	Hi int
}

// NewPairKey orders a and b.
func NewPairKey(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// PairSet is a set of unordered pairs.
type PairSet struct {
	keys map[PairKey]struct{}
}

// NewPairSet creates an empty set.
func NewPairSet() *PairSet {
	return &PairSet{keys: make(map[PairKey]struct{})}
}

// Add inserts k.
func (s *PairSet) Add(k PairKey) {
	s.keys[k] = struct{}{}
}

// Contains reports whether k is in the set.
func (s *PairSet) Contains(k PairKey) bool {
	_, ok := s.keys[k]
	return ok
}

// Len returns the number of pairs.
func (s *PairSet) Len() int {
	return len(s.keys)
}

// Clear removes every pair.
func (s *PairSet) Clear() {
	s.keys = make(map[PairKey]struct{})
}

// Keys returns the pairs sorted by (Lo, Hi).
func (s *PairSet) Keys() []PairKey {
	out := make([]PairKey, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lo != out[j].Lo {
			return out[i].Lo < out[j].Lo
		}
		return out[i].Hi < out[j].Hi
	})
	return out
}

// Comparison is one recorded answer.
type Comparison struct {
	Pair    Pair      `json:"pair"`
	Outcome Outcome   `json:"outcome"`
	At      time.Time `json:"at"`
}

// MaxUniquePairs returns n choose 2.
func MaxUniquePairs(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
