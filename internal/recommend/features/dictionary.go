// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package features

import (
	"sort"

	"github.com/tomtom215/endless/internal/catalog"
)

// Dictionary is a frozen bijection between tag names and ordinals in [0, Size).
type Dictionary struct {
	names    []string
	ordinals map[string]int
}

// BuildDictionary collects every tag with a positive weight across records and
// assigns ordinals by sorted name.
func BuildDictionary(records []catalog.Record) *Dictionary {
	seen := make(map[string]struct{})
	for i := range records {
		for name, weight := range records[i].Tags {
			if weight > 0 {
				seen[name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return NewDictionary(names)
}

// NewDictionary builds a dictionary from an arbitrary name list.
// Duplicates and empty names are ignored.
func NewDictionary(names []string) *Dictionary {
	sorted := make([]string, 0, len(names))
	uniq := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := uniq[n]; dup {
			continue
		}
		uniq[n] = struct{}{}
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	ordinals := make(map[string]int, len(sorted))
	for i, n := range sorted {
		ordinals[n] = i
	}
	return &Dictionary{names: sorted, ordinals: ordinals}
}

// Size returns the number of features.
func (d *Dictionary) Size() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Ordinal returns the ordinal of name.
func (d *Dictionary) Ordinal(name string) (int, bool) {
	if d == nil {
		return 0, false
	}
	i, ok := d.ordinals[name]
	return i, ok
}

// Name returns the feature name at ordinal.
func (d *Dictionary) Name(ordinal int) (string, bool) {
	if d == nil || ordinal < 0 || ordinal >= len(d.names) {
		return "", false
	}
	return d.names[ordinal], true
}

// Names returns a copy of the names in ordinal order.
func (d *Dictionary) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Equal reports whether both dictionaries map the same names to the same ordinals.
func (d *Dictionary) Equal(other *Dictionary) bool {
	return d.EqualNames(other.Names())
}

// EqualNames reports whether names, in order, match this dictionary.
func (d *Dictionary) EqualNames(names []string) bool {
	if d.Size() != len(names) {
		return false
	}
	for i, n := range names {
		if d.names[i] != n {
			return false
		}
	}
	return true
}
