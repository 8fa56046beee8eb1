// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package cache

import (
	"sort"
)

// Scored pairs a value with the score it was ranked by.
type Scored[T any] struct {
	Value T
	Score float64
	seq   int // insertion order, breaks score ties
}

// TopK retains the k highest-scoring values pushed into it.
//
// Internally it is a min-heap of at most k entries: the root is the weakest
// retained entry, so a new value only needs to beat the root to get in.
// Push is O(log k). Ties keep the earlier value.
//
// TopK is not safe for concurrent use.
type TopK[T any] struct {
	k    int
	heap []Scored[T]
	seq  int
}

// NewTopK creates a bounded selector. k <= 0 retains nothing.
func NewTopK[T any](k int) *TopK[T] {
	if k < 0 {
		k = 0
	}
	return &TopK[T]{k: k, heap: make([]Scored[T], 0, k)}
}

// Push offers a value. It reports whether the value was retained.
func (t *TopK[T]) Push(value T, score float64) bool {
	if t.k == 0 {
		return false
	}

	entry := Scored[T]{Value: value, Score: score, seq: t.seq}
	t.seq++

	if len(t.heap) < t.k {
		t.heap = append(t.heap, entry)
		t.bubbleUp(len(t.heap) - 1)
		return true
	}

	if !t.less(t.heap[0], entry) {
		return false
	}
	t.heap[0] = entry
	t.bubbleDown(0)
	return true
}

// Len returns the number of retained values.
func (t *TopK[T]) Len() int {
	return len(t.heap)
}

// Min returns the weakest retained entry.
func (t *TopK[T]) Min() (Scored[T], bool) {
	if len(t.heap) == 0 {
		return Scored[T]{}, false
	}
	return t.heap[0], true
}

// Sorted returns retained entries by descending score, ties in push order.
func (t *TopK[T]) Sorted() []Scored[T] {
	out := make([]Scored[T], len(t.heap))
	copy(out, t.heap)
	sort.Slice(out, func(i, j int) bool {
		return t.less(out[j], out[i])
	})
	return out
}

// Values returns retained values by descending score.
func (t *TopK[T]) Values() []T {
	sorted := t.Sorted()
	out := make([]T, len(sorted))
	for i := range sorted {
		out[i] = sorted[i].Value
	}
	return out
}

// Reset drops every retained entry.
func (t *TopK[T]) Reset() {
	t.heap = t.heap[:0]
	t.seq = 0
}

// less orders the heap: lower score first, later insertion first on ties
// so earlier values survive eviction.
func (t *TopK[T]) less(a, b Scored[T]) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.seq > b.seq
}

func (t *TopK[T]) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !t.less(t.heap[i], t.heap[parent]) {
			break
		}
		t.heap[i], t.heap[parent] = t.heap[parent], t.heap[i]
		i = parent
	}
}

func (t *TopK[T]) bubbleDown(i int) {
	n := len(t.heap)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && t.less(t.heap[left], t.heap[smallest]) {
			smallest = left
		}
		if right < n && t.less(t.heap[right], t.heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		t.heap[i], t.heap[smallest] = t.heap[smallest], t.heap[i]
		i = smallest
	}
}

// TopKValues returns up to k values with the highest scores, by descending score.
func TopKValues[T any](values []T, k int, score func(T) float64) []T {
	top := NewTopK[T](k)
	for _, v := range values {
		top.Push(v, score(v))
	}
	return top.Values()
}
