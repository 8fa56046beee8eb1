// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package preference

import (
	"math"
	"sort"
)

// FeatureWeight is a named learned weight.
type FeatureWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Summary splits significant weights into liked and disliked features.
type Summary struct {
	// Liked holds positive weights, strongest first.
	Liked []FeatureWeight `json:"liked"`

	// Disliked holds negative weights, most negative first.
	Disliked []FeatureWeight `json:"disliked"`
}

// Summary reports every feature whose |weight| exceeds the summary threshold.
func (m *Model) Summary() (Summary, error) {
	if !m.Initialized() {
		return Summary{}, ErrNotInitialized
	}

	s := Summary{Liked: []FeatureWeight{}, Disliked: []FeatureWeight{}}
	for i, w := range m.weights {
		if math.Abs(w) <= m.cfg.SummaryThreshold {
			continue
		}
		name, _ := m.dict.Name(i)
		fw := FeatureWeight{Name: name, Weight: w}
		if w > 0 {
			s.Liked = append(s.Liked, fw)
		} else {
			s.Disliked = append(s.Disliked, fw)
		}
	}

	sort.Slice(s.Liked, func(i, j int) bool {
		if s.Liked[i].Weight != s.Liked[j].Weight {
			return s.Liked[i].Weight > s.Liked[j].Weight
		}
		return s.Liked[i].Name < s.Liked[j].Name
	})
	sort.Slice(s.Disliked, func(i, j int) bool {
		if s.Disliked[i].Weight != s.Disliked[j].Weight {
			return s.Disliked[i].Weight < s.Disliked[j].Weight
		}
		return s.Disliked[i].Name < s.Disliked[j].Name
	})
	return s, nil
}

// Top returns at most n entries from each list.
func (s Summary) Top(n int) Summary {
	out := Summary{Liked: s.Liked, Disliked: s.Disliked}
	if n >= 0 && len(out.Liked) > n {
		out.Liked = out.Liked[:n]
	}
	if n >= 0 && len(out.Disliked) > n {
		out.Disliked = out.Disliked[:n]
	}
	return out
}
