// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package catalog

import (
	"sort"
)

// Record is a single catalog entry.
type Record struct {
	// ID is the opaque, unique record identifier (Steam app id).
	ID int `json:"appId"`

	// Name is the display name.
	Name string `json:"name"`

	// Tags maps tag names to non-negative vote counts.
	Tags map[string]float64 `json:"tags"`

	// Display-only fields. Never used for learning.
	CoverURL  string `json:"coverUrl,omitempty"`
	Price     string `json:"price,omitempty"`
	Developer string `json:"developer,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	ReviewPos int    `json:"reviewPos,omitempty"`
	ReviewNeg int    `json:"reviewNeg,omitempty"`
}

// HasTags reports whether the record carries at least one positive tag weight.
func (r *Record) HasTags() bool {
	for _, v := range r.Tags {
		if v > 0 {
			return true
		}
	}
	return false
}

// Fingerprint identifies a catalog by size and boundary ids.
// It is comparable and can be used as a map key.
type Fingerprint struct {
	Count   int `json:"count"`
	FirstID int `json:"first_id"`
	LastID  int `json:"last_id"`
}

// FingerprintOf returns the fingerprint of records in their current order.
func FingerprintOf(records []Record) Fingerprint {
	if len(records) == 0 {
		return Fingerprint{}
	}
	return Fingerprint{
		Count:   len(records),
		FirstID: records[0].ID,
		LastID:  records[len(records)-1].ID,
	}
}

// Normalize sorts records by id and drops later duplicates of the same id.
// The input slice is not modified.
func Normalize(records []Record) []Record {
	out := make([]Record, 0, len(records))
	seen := make(map[int]struct{}, len(records))
	for i := range records {
		if _, dup := seen[records[i].ID]; dup {
			continue
		}
		seen[records[i].ID] = struct{}{}
		out = append(out, records[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Index maps record ids to their position in records.
func Index(records []Record) map[int]int {
	idx := make(map[int]int, len(records))
	for i := range records {
		idx[records[i].ID] = i
	}
	return idx
}
