// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package preference

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/endless/internal/recommend/features"
)

var (
	// ErrNotInitialized is returned when the model is used before Initialize.
	ErrNotInitialized = errors.New("preference model not initialized")

	// ErrDimensionMismatch is returned for vectors built against another dictionary.
	ErrDimensionMismatch = errors.New("vector dimension does not match model")

	// ErrUnknownFeature is returned when a feature name is not in the dictionary.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrInvalidDirection is returned for a zero boost direction.
	ErrInvalidDirection = errors.New("boost direction must be non-zero")

	// ErrSnapshotMismatch is returned when a snapshot was taken against a
	// different dictionary. The model is left untouched.
	ErrSnapshotMismatch = errors.New("snapshot does not match model dictionary")
)

// EventKind classifies a recorded decision.
type EventKind int

const (
	// KindPreference means one record was preferred over the other.
	KindPreference EventKind = iota
	// KindBothLiked means both records were liked.
	KindBothLiked
	// KindBothDisliked means both records were disliked.
	KindBothDisliked
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case KindPreference:
		return "preference"
	case KindBothLiked:
		return "both_liked"
	case KindBothDisliked:
		return "both_disliked"
	default:
		return "unknown"
	}
}

// Candidate is a record as seen by the model: its id and encoded vector.
type Candidate struct {
	ID     int
	Vector features.SparseVector
}

// ChoiceEvent records one weight-changing decision.
// For KindPreference, WinnerID beat LoserID. For the both-kinds they hold the
// first and second record as shown.
type ChoiceEvent struct {
	WinnerID int                   `json:"winner_id"`
	LoserID  int                   `json:"loser_id"`
	Kind     EventKind             `json:"kind"`
	At       time.Time             `json:"at"`
	Winner   features.SparseVector `json:"-"`
	Loser    features.SparseVector `json:"-"`

	// Gradient is 1 - p for preferences and the signed shared factor otherwise.
	Gradient float64 `json:"gradient"`
}

// ImportanceSource supplies per-feature learning multipliers.
type ImportanceSource interface {
	Importance(name string) float64
}

// Model is the online linear preference model.
type Model struct {
	cfg  Config
	dict *features.Dictionary

	weights          []float64
	actualDecisions  int
	totalComparisons int
	history          []ChoiceEvent

	rarity     ImportanceSource
	importance []float64

	version uint64
	now     func() time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// NewModel creates an uninitialized model. cfg is used as given; start from
// DefaultConfig to pick up the standard hyperparameters. BothFactor,
// PriorVotes and SummaryThreshold may be zero.
func NewModel(cfg Config, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preference config: %w", err)
	}

	m := &Model{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Initialize allocates a zero weight vector for dict and clears all state.
func (m *Model) Initialize(dict *features.Dictionary) {
	m.dict = dict
	m.weights = make([]float64, dict.Size())
	m.actualDecisions = 0
	m.totalComparisons = 0
	m.history = nil
	m.refreshImportance()
	m.version++
}

// Initialized reports whether Initialize has been called.
func (m *Model) Initialized() bool {
	return m.dict != nil
}

// Dictionary returns the dictionary the weights are indexed by.
func (m *Model) Dictionary() *features.Dictionary {
	return m.dict
}

// Config returns the model hyperparameters.
func (m *Model) Config() Config {
	return m.cfg
}

// Version increases on every weight change. Score caches key on it.
func (m *Model) Version() uint64 {
	return m.version
}

// ActualDecisions counts weight-changing decisions.
func (m *Model) ActualDecisions() int {
	return m.actualDecisions
}

// TotalComparisons counts every recorded comparison, skips included.
func (m *Model) TotalComparisons() int {
	return m.totalComparisons
}

// Weights returns a copy of the weight vector.
func (m *Model) Weights() []float64 {
	out := make([]float64, len(m.weights))
	copy(out, m.weights)
	return out
}

// Weight returns the weight of a named feature.
func (m *Model) Weight(name string) (float64, error) {
	if !m.Initialized() {
		return 0, ErrNotInitialized
	}
	idx, ok := m.dict.Ordinal(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	return m.weights[idx], nil
}

// History returns a copy of the recorded decisions, oldest first.
func (m *Model) History() []ChoiceEvent {
	out := make([]ChoiceEvent, len(m.history))
	copy(out, m.history)
	return out
}

// AttachRarity multiplies single-winner updates by src's importance per feature.
func (m *Model) AttachRarity(src ImportanceSource) {
	m.rarity = src
	m.refreshImportance()
}

// DetachRarity removes the importance source.
func (m *Model) DetachRarity() {
	m.rarity = nil
	m.importance = nil
}

// RefreshImportance re-reads multipliers after the source was reconfigured.
func (m *Model) RefreshImportance() {
	m.refreshImportance()
}

func (m *Model) refreshImportance() {
	if m.rarity == nil || m.dict == nil {
		m.importance = nil
		return
	}
	m.importance = make([]float64, m.dict.Size())
	for i := range m.importance {
		name, _ := m.dict.Name(i)
		m.importance[i] = m.rarity.Importance(name)
	}
}

func (m *Model) multiplier(idx int) float64 {
	if m.importance == nil {
		return 1.0
	}
	return m.importance[idx]
}

func (m *Model) check(vs ...features.SparseVector) error {
	if !m.Initialized() {
		return ErrNotInitialized
	}
	for _, v := range vs {
		if v.Dim != len(m.weights) {
			return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, v.Dim, len(m.weights))
		}
	}
	return nil
}

// Score returns the dot product of v with the weights.
//
//nolint:gocritic // vectors are passed by value throughout the package
func (m *Model) Score(v features.SparseVector) (float64, error) {
	if err := m.check(v); err != nil {
		return 0, err
	}
	return v.Dot(m.weights), nil
}

// Probability returns the model's probability that a is preferred over b.
//
//nolint:gocritic // vectors are passed by value throughout the package
func (m *Model) Probability(a, b features.SparseVector) (float64, error) {
	if err := m.check(a, b); err != nil {
		return 0, err
	}
	return Sigmoid(a.Dot(m.weights) - b.Dot(m.weights)), nil
}

// RecordSkip counts a comparison without touching the weights.
func (m *Model) RecordSkip() error {
	if !m.Initialized() {
		return ErrNotInitialized
	}
	m.totalComparisons++
	return nil
}

// Update applies one logistic SGD step for winner beating loser.
func (m *Model) Update(winner, loser Candidate) error {
	if err := m.check(winner.Vector, loser.Vector); err != nil {
		return err
	}

	diff := winner.Vector.Dot(m.weights) - loser.Vector.Dot(m.weights)
	gradient := 1 - Sigmoid(diff)

	m.decay()
	step := gradient * m.cfg.LearningRate
	for _, e := range winner.Vector.Entries {
		m.weights[e.Index] += step * e.Value * m.multiplier(e.Index)
	}
	for _, e := range loser.Vector.Entries {
		m.weights[e.Index] -= step * e.Value * m.multiplier(e.Index)
	}

	m.record(winner, loser, KindPreference, gradient)
	return nil
}

// UpdateBothPositive raises every feature of both records by the shared factor.
func (m *Model) UpdateBothPositive(a, b Candidate) error {
	return m.updateBoth(a, b, KindBothLiked, m.cfg.BothFactor*m.cfg.LearningRate)
}

// UpdateBothNegative lowers every feature of both records by the shared factor.
func (m *Model) UpdateBothNegative(a, b Candidate) error {
	return m.updateBoth(a, b, KindBothDisliked, -m.cfg.BothFactor*m.cfg.LearningRate)
}

func (m *Model) updateBoth(a, b Candidate, kind EventKind, factor float64) error {
	if err := m.check(a.Vector, b.Vector); err != nil {
		return err
	}

	m.decay()
	for _, e := range a.Vector.Entries {
		m.weights[e.Index] += factor * e.Value
	}
	for _, e := range b.Vector.Entries {
		m.weights[e.Index] += factor * e.Value
	}

	m.record(a, b, kind, factor)
	return nil
}

func (m *Model) record(winner, loser Candidate, kind EventKind, gradient float64) {
	m.actualDecisions++
	m.totalComparisons++
	m.history = append(m.history, ChoiceEvent{
		WinnerID: winner.ID,
		LoserID:  loser.ID,
		Kind:     kind,
		At:       m.now(),
		Winner:   winner.Vector,
		Loser:    loser.Vector,
		Gradient: gradient,
	})
	m.version++
}

// decay scales all weights by the recency factor. No-op before the first decision.
func (m *Model) decay() {
	factor := DecayFactor(m.actualDecisions)
	if factor == 1.0 || len(m.weights) == 0 {
		return
	}
	floats.Scale(factor, m.weights)
}

// Direction is the sign of an explicit feature boost.
type Direction int

const (
	// Dislike pushes a feature's weight down.
	Dislike Direction = -1
	// Like pushes a feature's weight up.
	Like Direction = 1
)

// BoostFeature nudges one feature's weight by lr * BoostStrength in the given
// direction. Counters are unchanged.
func (m *Model) BoostFeature(name string, dir Direction) error {
	if !m.Initialized() {
		return ErrNotInitialized
	}
	if dir == 0 {
		return ErrInvalidDirection
	}
	idx, ok := m.dict.Ordinal(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}

	sign := 1.0
	if dir < 0 {
		sign = -1.0
	}
	m.weights[idx] += sign * m.cfg.LearningRate * m.cfg.BoostStrength
	m.version++
	return nil
}

// ApplyPrior adds an external weight contribution, rescaled so its strongest
// feature moves by lr * PriorVotes. Unknown features are ignored. The usual
// recency decay runs first. Counters are unchanged.
func (m *Model) ApplyPrior(contribution map[string]float64) error {
	if !m.Initialized() {
		return ErrNotInitialized
	}

	delta := make([]float64, len(m.weights))
	for name, v := range contribution {
		if idx, ok := m.dict.Ordinal(name); ok {
			delta[idx] = v
		}
	}

	var maxAbs float64
	for _, v := range delta {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	if maxAbs == 0 {
		return nil
	}

	m.decay()
	floats.AddScaled(m.weights, m.cfg.LearningRate*m.cfg.PriorVotes/maxAbs, delta)
	m.version++
	return nil
}

// Reset zeroes the weights and clears counters and history.
func (m *Model) Reset() {
	for i := range m.weights {
		m.weights[i] = 0
	}
	m.actualDecisions = 0
	m.totalComparisons = 0
	m.history = nil
	m.version++
}

// Sigmoid is the numerically stable logistic function.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Uncertainty maps a preference probability to [0, 1], peaking at p = 0.5.
func Uncertainty(p float64) float64 {
	return 1 - 2*math.Abs(p-0.5)
}
