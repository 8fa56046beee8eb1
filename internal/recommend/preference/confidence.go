// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package preference

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/endless/internal/cache"
)

// Confidence term weights.
const (
	accuracyWeight      = 0.40
	magnitudeWeight     = 0.25
	volumeWeight        = 0.20
	concentrationWeight = 0.15

	concentrationTopN = 10
)

// ConfidenceBreakdown exposes the individual confidence terms, each in [0, 1].
type ConfidenceBreakdown struct {
	Accuracy      float64 `json:"accuracy"`
	Magnitude     float64 `json:"magnitude"`
	Volume        float64 `json:"volume"`
	Concentration float64 `json:"concentration"`
	Total         float64 `json:"total"`
}

// Confidence returns a score in [0, 1]. It is 0 before any decision.
func (m *Model) Confidence() float64 {
	return m.ConfidenceBreakdown().Total
}

// ConfidenceBreakdown computes each confidence term.
func (m *Model) ConfidenceBreakdown() ConfidenceBreakdown {
	if !m.Initialized() || m.actualDecisions == 0 {
		return ConfidenceBreakdown{}
	}

	window := m.history
	if len(window) > m.cfg.ConfidenceWindow {
		window = window[len(window)-m.cfg.ConfidenceWindow:]
	}

	b := ConfidenceBreakdown{
		Accuracy:      m.recentAccuracy(window),
		Magnitude:     math.Min(floats.Norm(m.weights, 2)/m.cfg.ReferenceMagnitude, 1),
		Volume:        float64(len(window)) / float64(m.cfg.ConfidenceWindow),
		Concentration: m.concentration(),
	}
	b.Total = accuracyWeight*b.Accuracy +
		magnitudeWeight*b.Magnitude +
		volumeWeight*b.Volume +
		concentrationWeight*b.Concentration
	b.Total = math.Max(0, math.Min(1, b.Total))
	return b
}

// recentAccuracy is the fraction of single-winner decisions in window that
// the current weights rank the same way.
func (m *Model) recentAccuracy(window []ChoiceEvent) float64 {
	var judged, correct int
	for i := range window {
		if window[i].Kind != KindPreference {
			continue
		}
		judged++
		if window[i].Winner.Dot(m.weights) > window[i].Loser.Dot(m.weights) {
			correct++
		}
	}
	if judged == 0 {
		return 0
	}
	return float64(correct) / float64(judged)
}

// concentration is the share of absolute weight mass held by the ten
// strongest features.
func (m *Model) concentration() float64 {
	abs := make([]float64, len(m.weights))
	for i, w := range m.weights {
		abs[i] = math.Abs(w)
	}
	total := floats.Sum(abs)
	if total == 0 {
		return 0
	}

	top := cache.TopKValues(abs, concentrationTopN, func(v float64) float64 { return v })
	return floats.Sum(top) / total
}
