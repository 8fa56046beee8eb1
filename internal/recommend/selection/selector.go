// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package selection

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/endless/internal/cache"
	"github.com/tomtom215/endless/internal/catalog"
	"github.com/tomtom215/endless/internal/recommend/features"
	"github.com/tomtom215/endless/internal/recommend/preference"
)

var (
	// ErrUnknownRecord is returned for ids that are not in the catalog.
	ErrUnknownRecord = errors.New("unknown record")

	// ErrInvalidPair is returned when both sides of a pair are the same record.
	ErrInvalidPair = errors.New("pair must contain two distinct records")

	// ErrTargetReached is returned when recording past the target outside refinement.
	ErrTargetReached = errors.New("comparison target reached")

	// ErrInvalidOutcome is returned for unknown outcomes.
	ErrInvalidOutcome = errors.New("invalid outcome")
)

// guidedAttemptFactor bounds rejection sampling in guided search to
// depth * guidedAttemptFactor draws.
const guidedAttemptFactor = 4

// Selection is a chosen pair plus how it was chosen.
type Selection struct {
	Pair        Pair    `json:"pair"`
	Phase       Phase   `json:"phase"`
	Uncertainty float64 `json:"uncertainty"`

	// Depth and Bucket describe guided sampling. Zero for other phases.
	Depth  int    `json:"depth,omitempty"`
	Bucket string `json:"bucket,omitempty"`
}

// Progress reports how far the session is.
type Progress struct {
	Current    int  `json:"current"`
	Total      int  `json:"total"`
	Refinement bool `json:"refinement"`
}

// Ranked is a record with its model score.
type Ranked struct {
	Record catalog.Record `json:"record"`
	Score  float64        `json:"score"`
}

// Selector owns the comparison loop state for one session.
// It is not safe for concurrent use.
type Selector struct {
	cfg     Config
	model   *preference.Model
	encoder *features.Encoder
	rng     RandomSource
	logger  zerolog.Logger
	now     func() time.Time

	records []catalog.Record
	index   map[int]int
	names   []NameKey
	all     []int

	used       *PairSet
	history    []Comparison
	refinement bool

	scores        *cache.Memo[int, float64]
	scoresVersion uint64
	similar       *cache.Memo[PairKey, bool]
}

// Option configures a Selector.
type Option func(*Selector)

// WithRandomSource injects the randomness source.
func WithRandomSource(rng RandomSource) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithLogger sets the logger.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger.With().Str("component", "pair_selector").Logger()
	}
}

// WithClock overrides the comparison timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a selector over records. The model must already be initialized
// with the encoder's dictionary.
func New(model *preference.Model, records []catalog.Record, encoder *features.Encoder, cfg Config, opts ...Option) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid selection config: %w", err)
	}
	if model == nil || !model.Initialized() {
		return nil, preference.ErrNotInitialized
	}
	if encoder == nil || encoder.Dictionary().Size() != model.Dictionary().Size() {
		return nil, fmt.Errorf("%w: encoder and model dictionaries differ", preference.ErrDimensionMismatch)
	}

	s := &Selector{
		cfg:     cfg,
		model:   model,
		encoder: encoder,
		rng:     NewSeededSource(0),
		logger:  zerolog.Nop(),
		now:     time.Now,
		records: records,
		index:   catalog.Index(records),
		names:   make([]NameKey, len(records)),
		all:     make([]int, len(records)),
		used:    NewPairSet(),
		scores:  cache.NewMemo[int, float64](len(records)),
		similar: cache.NewMemo[PairKey, bool](0),
	}
	for i := range records {
		s.names[i] = NormalizeName(records[i].Name)
		s.all[i] = i
	}
	s.scoresVersion = model.Version()

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Records returns the catalog the selector draws from.
func (s *Selector) Records() []catalog.Record {
	return s.records
}

// Record looks up a record by id.
func (s *Selector) Record(id int) (*catalog.Record, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.records[i], true
}

// Progress returns the current and target comparison counts.
// In refinement Total grows with Current.
func (s *Selector) Progress() Progress {
	total := s.cfg.TargetComparisons
	if maxPairs := MaxUniquePairs(len(s.records)); maxPairs < total {
		total = maxPairs
	}
	current := s.model.TotalComparisons()
	if s.refinement && current > total {
		total = current
	}
	return Progress{Current: current, Total: total, Refinement: s.refinement}
}

// Refinement reports whether refinement mode is on.
func (s *Selector) Refinement() bool {
	return s.refinement
}

// EnterRefinement switches to exhaustive search with pair reuse and lifts the
// comparison target.
func (s *Selector) EnterRefinement() {
	if !s.refinement {
		s.logger.Info().
			Int("comparisons", s.model.TotalComparisons()).
			Msg("entering refinement mode")
	}
	s.refinement = true
}

// History returns a copy of the recorded comparisons, oldest first.
func (s *Selector) History() []Comparison {
	out := make([]Comparison, len(s.history))
	copy(out, s.history)
	return out
}

// UsedPairs returns the number of distinct pairs already answered.
func (s *Selector) UsedPairs() int {
	return s.used.Len()
}

// WasUsed reports whether a pair has been answered.
func (s *Selector) WasUsed(p Pair) bool {
	return s.used.Contains(p.Key())
}

// ScoreCacheStats exposes score cache counters.
func (s *Selector) ScoreCacheStats() cache.MemoStats {
	return s.scores.Stats()
}

// Next chooses the next pair. It reports false when the catalog has fewer
// than two records, no eligible pair remains, or the target was reached
// outside refinement.
func (s *Selector) Next() (Selection, bool, error) {
	if len(s.records) < 2 {
		return Selection{}, false, nil
	}

	if s.refinement {
		sel, ok, err := s.refinementPair()
		if err != nil || ok {
			return sel, ok, err
		}
		sel, ok, err = s.guidedPair()
		if err != nil || ok {
			return sel, ok, err
		}
		return s.randomSelection(PhaseFallback, s.outsideRecencyWindow())
	}

	if s.model.TotalComparisons() >= s.Progress().Total {
		return Selection{}, false, nil
	}

	if s.model.ActualDecisions() < s.cfg.BootstrapDecisions {
		return s.randomSelection(PhaseBootstrap, nil)
	}

	sel, ok, err := s.guidedPair()
	if err != nil || ok {
		return sel, ok, err
	}
	return s.randomSelection(PhaseFallback, nil)
}

// RecordChoice applies the outcome to the model and marks the pair used.
func (s *Selector) RecordChoice(p Pair, outcome Outcome) error {
	if !outcome.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidOutcome, outcome)
	}
	if p.First == p.Second {
		return ErrInvalidPair
	}
	i, ok := s.index[p.First]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRecord, p.First)
	}
	j, ok := s.index[p.Second]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownRecord, p.Second)
	}
	if !s.refinement && s.model.TotalComparisons() >= s.Progress().Total {
		return ErrTargetReached
	}

	first, second := s.candidate(i), s.candidate(j)

	var err error
	switch outcome {
	case OutcomeFirst:
		err = s.model.Update(first, second)
	case OutcomeSecond:
		err = s.model.Update(second, first)
	case OutcomeBothLiked:
		err = s.model.UpdateBothPositive(first, second)
	case OutcomeBothDisliked:
		err = s.model.UpdateBothNegative(first, second)
	case OutcomeSkip:
		err = s.model.RecordSkip()
	}
	if err != nil {
		return fmt.Errorf("record %s: %w", outcome, err)
	}

	s.used.Add(p.Key())
	s.history = append(s.history, Comparison{Pair: p, Outcome: outcome, At: s.now()})
	return nil
}

// Rank scores every record, highest first. Ties are broken by id.
func (s *Selector) Rank() ([]Ranked, error) {
	ranked := make([]Ranked, len(s.records))
	for i := range s.records {
		score, err := s.score(i)
		if err != nil {
			return nil, err
		}
		ranked[i] = Ranked{Record: s.records[i], Score: score}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}
		return ranked[a].Record.ID < ranked[b].Record.ID
	})
	return ranked, nil
}

// Reset clears the used pairs, history, refinement flag and score cache, and
// resets the model.
func (s *Selector) Reset() {
	s.used.Clear()
	s.history = nil
	s.refinement = false
	s.model.Reset()
	s.scores.Clear()
	s.scoresVersion = s.model.Version()
}

func (s *Selector) candidate(i int) preference.Candidate {
	return preference.Candidate{
		ID:     s.records[i].ID,
		Vector: s.encoder.Encode(&s.records[i]),
	}
}

// score returns the cached model score of record i. The cache is dropped
// whenever the model version moves.
func (s *Selector) score(i int) (float64, error) {
	if v := s.model.Version(); v != s.scoresVersion {
		s.scores.Clear()
		s.scoresVersion = v
	}

	id := s.records[i].ID
	if v, ok := s.scores.Get(id); ok {
		return v, nil
	}
	v, err := s.model.Score(s.encoder.Encode(&s.records[i]))
	if err != nil {
		return 0, err
	}
	s.scores.Set(id, v)
	return v, nil
}

func (s *Selector) uncertainty(i, j int) (float64, error) {
	si, err := s.score(i)
	if err != nil {
		return 0, err
	}
	sj, err := s.score(j)
	if err != nil {
		return 0, err
	}
	return preference.Uncertainty(preference.Sigmoid(si - sj)), nil
}

// tooSimilar reports whether two records look like the same game.
func (s *Selector) tooSimilar(i, j int) bool {
	key := NewPairKey(s.records[i].ID, s.records[j].ID)
	return s.similar.GetOrCompute(key, func() bool {
		if SimilarNames(s.names[i], s.names[j]) {
			return true
		}
		return features.Cosine(s.records[i].Tags, s.records[j].Tags) > s.cfg.SimilarityThreshold
	})
}

// eligible reports whether (i, j) may be shown. A used pair is only allowed
// when reusable approves it.
func (s *Selector) eligible(i, j int, reusable func(PairKey) bool) bool {
	if i == j {
		return false
	}
	key := NewPairKey(s.records[i].ID, s.records[j].ID)
	if s.used.Contains(key) && (reusable == nil || !reusable(key)) {
		return false
	}
	return !s.tooSimilar(i, j)
}

// outsideRecencyWindow allows reuse of pairs not answered in the last
// RecencyWindow comparisons.
func (s *Selector) outsideRecencyWindow() func(PairKey) bool {
	start := len(s.history) - s.cfg.RecencyWindow
	if start < 0 {
		start = 0
	}
	recent := make(map[PairKey]struct{}, len(s.history)-start)
	for _, c := range s.history[start:] {
		recent[c.Pair.Key()] = struct{}{}
	}
	return func(k PairKey) bool {
		_, blocked := recent[k]
		return !blocked
	}
}

// orient randomizes which record is shown first.
func (s *Selector) orient(i, j int) Pair {
	if s.rng.Intn(2) == 0 {
		i, j = j, i
	}
	return Pair{First: s.records[i].ID, Second: s.records[j].ID}
}

func (s *Selector) randomSelection(phase Phase, reusable func(PairKey) bool) (Selection, bool, error) {
	i, j, ok := s.randomPair(s.all, reusable)
	if !ok {
		return Selection{}, false, nil
	}
	u, err := s.uncertainty(i, j)
	if err != nil {
		return Selection{}, false, err
	}
	return Selection{Pair: s.orient(i, j), Phase: phase, Uncertainty: u}, true, nil
}

// randomPair draws a uniformly random eligible pair from pool. Small pools
// are enumerated, large ones rejection-sampled with a linear scan as the
// last resort.
func (s *Selector) randomPair(pool []int, reusable func(PairKey) bool) (int, int, bool) {
	m := len(pool)
	if m < 2 {
		return 0, 0, false
	}

	if MaxUniquePairs(m) <= s.cfg.ExhaustivePairLimit {
		var candidates [][2]int
		for a := 0; a < m; a++ {
			for b := a + 1; b < m; b++ {
				if s.eligible(pool[a], pool[b], reusable) {
					candidates = append(candidates, [2]int{pool[a], pool[b]})
				}
			}
		}
		if len(candidates) == 0 {
			return 0, 0, false
		}
		pick := candidates[s.rng.Intn(len(candidates))]
		return pick[0], pick[1], true
	}

	for attempt := 0; attempt < s.cfg.MaxRandomAttempts; attempt++ {
		a, b := s.drawTwo(m)
		if s.eligible(pool[a], pool[b], reusable) {
			return pool[a], pool[b], true
		}
	}

	start := s.rng.Intn(m)
	for off := 0; off < m; off++ {
		a := (start + off) % m
		for b := a + 1; b < m; b++ {
			if s.eligible(pool[a], pool[b], reusable) {
				return pool[a], pool[b], true
			}
		}
		for b := 0; b < a; b++ {
			if s.eligible(pool[a], pool[b], reusable) {
				return pool[a], pool[b], true
			}
		}
	}
	return 0, 0, false
}

// drawTwo returns two distinct positions in [0, m).
func (s *Selector) drawTwo(m int) (int, int) {
	a := s.rng.Intn(m)
	b := s.rng.Intn(m - 1)
	if b >= a {
		b++
	}
	return a, b
}

// poolSize returns ceil(p*n), at least 2 and at most n.
func poolSize(p float64, n int) int {
	size := int(math.Ceil(p * float64(n)))
	if size < 2 {
		size = 2
	}
	if size > n {
		size = n
	}
	return size
}

// topPool returns the indices of the k highest-scoring records.
func (s *Selector) topPool(k int) ([]int, error) {
	top := cache.NewTopK[int](k)
	for i := range s.records {
		score, err := s.score(i)
		if err != nil {
			return nil, err
		}
		top.Push(i, score)
	}
	return top.Values(), nil
}

type candidatePair struct {
	i, j        int
	uncertainty float64
}

// guidedPair samples pairs from the top slice and returns the most uncertain.
// It reports false when nothing clears MinUncertainty.
func (s *Selector) guidedPair() (Selection, bool, error) {
	decisions := s.model.ActualDecisions()
	pct := guidedPercentile(decisions)
	pool, err := s.topPool(poolSize(pct, len(s.records)))
	if err != nil {
		return Selection{}, false, err
	}

	depth, bucket := sampleDepth(s.rng, s.model.Confidence())

	var best *candidatePair
	consider := func(i, j int) error {
		u, err := s.uncertainty(i, j)
		if err != nil {
			return err
		}
		if best == nil || u > best.uncertainty {
			best = &candidatePair{i: i, j: j, uncertainty: u}
		}
		return nil
	}

	m := len(pool)
	if MaxUniquePairs(m) <= depth {
		for a := 0; a < m; a++ {
			for b := a + 1; b < m; b++ {
				if !s.eligible(pool[a], pool[b], nil) {
					continue
				}
				if err := consider(pool[a], pool[b]); err != nil {
					return Selection{}, false, err
				}
			}
		}
	} else {
		sampled := 0
		for attempt := 0; attempt < depth*guidedAttemptFactor && sampled < depth; attempt++ {
			a, b := s.drawTwo(m)
			if !s.eligible(pool[a], pool[b], nil) {
				continue
			}
			sampled++
			if err := consider(pool[a], pool[b]); err != nil {
				return Selection{}, false, err
			}
		}
	}

	s.logger.Debug().
		Int("decisions", decisions).
		Float64("percentile", pct).
		Int("pool", m).
		Int("depth", depth).
		Str("bucket", bucket).
		Bool("found", best != nil).
		Msg("guided pair search")

	if best == nil || best.uncertainty < s.cfg.MinUncertainty {
		return Selection{}, false, nil
	}
	return Selection{
		Pair:        s.orient(best.i, best.j),
		Phase:       PhaseGuided,
		Uncertainty: best.uncertainty,
		Depth:       depth,
		Bucket:      bucket,
	}, true, nil
}

// refinementPair searches every pair of a small top slice, allowing reuse of
// pairs outside the recency window.
func (s *Selector) refinementPair() (Selection, bool, error) {
	pool, err := s.topPool(poolSize(s.cfg.RefinementPercentile, len(s.records)))
	if err != nil {
		return Selection{}, false, err
	}
	reusable := s.outsideRecencyWindow()

	var best *candidatePair
	for a := 0; a < len(pool); a++ {
		for b := a + 1; b < len(pool); b++ {
			i, j := pool[a], pool[b]
			if !s.eligible(i, j, reusable) {
				continue
			}
			u, err := s.uncertainty(i, j)
			if err != nil {
				return Selection{}, false, err
			}
			if best == nil || u > best.uncertainty {
				best = &candidatePair{i: i, j: j, uncertainty: u}
			}
		}
	}
	if best == nil {
		return Selection{}, false, nil
	}
	return Selection{
		Pair:        s.orient(best.i, best.j),
		Phase:       PhaseRefinement,
		Uncertainty: best.uncertainty,
	}, true, nil
}
