// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package features

import (
	"math"
	"sort"
)

// Entry is one non-zero component of a SparseVector.
type Entry struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// SparseVector holds the non-zero components of a Dim-length vector.
// Entries are sorted by strictly increasing Index.
type SparseVector struct {
	Dim     int     `json:"dim"`
	Entries []Entry `json:"entries"`
}

// Len returns the number of stored entries.
func (v SparseVector) Len() int {
	return len(v.Entries)
}

// Valid reports whether indices are strictly increasing and inside [0, Dim).
//
//nolint:gocritic // value receiver keeps vectors immutable
func (v SparseVector) Valid() bool {
	prev := -1
	for _, e := range v.Entries {
		if e.Index <= prev || e.Index >= v.Dim {
			return false
		}
		prev = e.Index
	}
	return true
}

// Dot returns the dot product with a dense vector of the same dimension.
// Indices beyond len(dense) contribute nothing.
//
//nolint:gocritic // value receiver keeps vectors immutable
func (v SparseVector) Dot(dense []float64) float64 {
	var sum float64
	for _, e := range v.Entries {
		if e.Index < len(dense) {
			sum += e.Value * dense[e.Index]
		}
	}
	return sum
}

// Scale returns a copy with every value multiplied by k.
//
//nolint:gocritic // value receiver keeps vectors immutable
func (v SparseVector) Scale(k float64) SparseVector {
	out := SparseVector{Dim: v.Dim, Entries: make([]Entry, len(v.Entries))}
	for i, e := range v.Entries {
		out.Entries[i] = Entry{Index: e.Index, Value: e.Value * k}
	}
	return out
}

// Norm returns the Euclidean norm.
//
//nolint:gocritic // value receiver keeps vectors immutable
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, e := range v.Entries {
		sum += e.Value * e.Value
	}
	return math.Sqrt(sum)
}

// Encode maps tag weights onto dictionary ordinals. Unknown tags and weights
// <= 0 are skipped. The result is sorted by ordinal.
func Encode(tags map[string]float64, dict *Dictionary) SparseVector {
	v := SparseVector{Dim: dict.Size(), Entries: make([]Entry, 0, len(tags))}
	for name, weight := range tags {
		if weight <= 0 {
			continue
		}
		if idx, ok := dict.Ordinal(name); ok {
			v.Entries = append(v.Entries, Entry{Index: idx, Value: weight})
		}
	}
	sort.Slice(v.Entries, func(i, j int) bool {
		return v.Entries[i].Index < v.Entries[j].Index
	})
	return v
}

// Cosine returns the cosine similarity of two raw tag maps.
// Either map having zero norm yields 0.
func Cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for name, va := range a {
		normA += va * va
		if vb, ok := b[name]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
