// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package cache

import (
	"sync"
)

// MemoStats tracks memo performance counters.
type MemoStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
	Clears  int64 `json:"clears"`
}

// HitRate returns hits / (hits + misses), or 0 when nothing was looked up.
func (s MemoStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Memo is a thread-safe keyed cache without expiration.
//
// Entries live until Clear is called. Owners clear the memo when the data the
// cached values were derived from changes (for example a model version bump
// or a new catalog), so there is no TTL or background cleanup.
type Memo[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	hits    int64
	misses  int64
	clears  int64
}

// NewMemo creates an empty memo with an optional capacity hint.
func NewMemo[K comparable, V any](sizeHint int) *Memo[K, V] {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Memo[K, V]{entries: make(map[K]V, sizeHint)}
}

// Get returns the cached value for key.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.entries[key]
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return v, ok
}

// Set stores value under key, replacing any existing entry.
func (m *Memo[K, V]) Set(key K, value V) {
	m.mu.Lock()
	m.entries[key] = value
	m.mu.Unlock()
}

// GetOrCompute returns the cached value for key, computing and storing it on a miss.
// compute runs without the lock held.
func (m *Memo[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	v := compute()
	m.Set(key, v)
	return v
}

// Delete removes a single entry.
func (m *Memo[K, V]) Delete(key K) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Len returns the number of cached entries.
func (m *Memo[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear drops every entry. Counters are preserved.
func (m *Memo[K, V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[K]V, len(m.entries))
	m.clears++
}

// Stats returns a copy of the memo counters.
func (m *Memo[K, V]) Stats() MemoStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MemoStats{
		Hits:    m.hits,
		Misses:  m.misses,
		Entries: len(m.entries),
		Clears:  m.clears,
	}
}
