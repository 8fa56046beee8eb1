// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package cache

import (
	"math/rand"
	"sort"
	"testing"
)

func TestTopK_KeepsHighest(t *testing.T) {
	t.Parallel()

	top := NewTopK[string](3)
	inputs := []struct {
		value string
		score float64
	}{
		{"a", 1}, {"b", 5}, {"c", 3}, {"d", 4}, {"e", 2}, {"f", 0},
	}
	for _, in := range inputs {
		top.Push(in.value, in.score)
	}

	got := top.Values()
	want := []string{"b", "d", "c"}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	minEntry, ok := top.Min()
	if !ok || minEntry.Value != "c" {
		t.Errorf("Min() = %+v, %v; want c", minEntry, ok)
	}
}

func TestTopK_TiesKeepEarlier(t *testing.T) {
	t.Parallel()

	top := NewTopK[int](2)
	for i := 0; i < 5; i++ {
		top.Push(i, 1.0)
	}

	got := top.Values()
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Values() = %v, want [0 1]", got)
	}
}

func TestTopK_EdgeCases(t *testing.T) {
	t.Parallel()

	zero := NewTopK[int](0)
	if zero.Push(1, 10) {
		t.Error("k=0 should retain nothing")
	}
	if _, ok := zero.Min(); ok {
		t.Error("Min() on empty should report false")
	}

	neg := NewTopK[int](-3)
	if neg.Len() != 0 || neg.Push(1, 1) {
		t.Error("negative k should behave like zero")
	}

	top := NewTopK[int](5)
	top.Push(1, 1)
	top.Reset()
	if top.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", top.Len())
	}
}

func TestTopKValues_MatchesSort(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test data
	values := make([]float64, 200)
	for i := range values {
		values[i] = rng.Float64()
	}

	got := TopKValues(values, 10, func(v float64) float64 { return v })

	sorted := append([]float64(nil), values...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	for i := 0; i < 10; i++ {
		if got[i] != sorted[i] {
			t.Fatalf("TopKValues()[%d] = %f, want %f", i, got[i], sorted[i])
		}
	}
}
