// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/endless/internal/cache"
	"github.com/tomtom215/endless/internal/catalog"
	"github.com/tomtom215/endless/internal/metrics"
	"github.com/tomtom215/endless/internal/recommend/features"
	"github.com/tomtom215/endless/internal/recommend/preference"
	"github.com/tomtom215/endless/internal/recommend/rarity"
	"github.com/tomtom215/endless/internal/recommend/selection"
)

// ErrNoCatalog is returned by operations that need a loaded catalog.
var ErrNoCatalog = errors.New("no catalog loaded")

// reasonsPerRecord bounds ScoredRecord.Reasons.
const reasonsPerRecord = 3

// Engine owns one learning session: the catalog, its feature dictionary,
// the preference model and the pair selector.
// It is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	config *Config
	logger zerolog.Logger
	rng    selection.RandomSource
	now    func() time.Time

	reranker    Reranker
	rarityCache *cache.Memo[catalog.Fingerprint, *rarity.Analysis]

	records       []catalog.Record
	encoder       *features.Encoder
	analyzer      *rarity.Analyzer
	model         *preference.Model
	selector      *selection.Selector
	rarityEnabled bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandomSource injects the randomness used for pair selection.
func WithRandomSource(rng selection.RandomSource) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithClock overrides the timestamp source for events and snapshots.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithReranker sets the reranker used by RankDiverse.
func WithReranker(rr Reranker) Option {
	return func(e *Engine) {
		e.reranker = rr
	}
}

// WithRarityCache shares catalog rarity analyses between engines.
func WithRarityCache(m *cache.Memo[catalog.Fingerprint, *rarity.Analysis]) Option {
	return func(e *Engine) {
		e.rarityCache = m
	}
}

// NewEngine creates an engine with no catalog. Call Load before selecting pairs.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:        cfg.Clone(),
		logger:        logger.With().Str("component", "recommend").Logger(),
		rng:           selection.NewSeededSource(cfg.Seed),
		now:           time.Now,
		rarityEnabled: cfg.Rarity.Enabled,
	}
	for _, opt := range opts {
		opt(e)
	}

	model, err := preference.NewModel(e.config.Learner, preference.WithClock(e.now))
	if err != nil {
		return nil, err
	}
	e.model = model

	var analyzerOpts []rarity.Option
	if e.rarityCache != nil {
		analyzerOpts = append(analyzerOpts, rarity.WithSharedCache(e.rarityCache))
	}
	e.analyzer = rarity.NewAnalyzer(e.config.Rarity.Analyzer(), analyzerOpts...)

	return e, nil
}

// Load replaces the catalog and starts a fresh session over it. Records are
// sorted by id and duplicate ids dropped. Catalogs with fewer than two
// records load but never produce a pair.
func (e *Engine) Load(records []catalog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	records = catalog.Normalize(records)
	encoder := features.NewCatalogEncoder(records, e.config.NormalizeFeatures)

	e.model.Initialize(encoder.Dictionary())
	e.analyzer.Analyze(records)
	if e.rarityEnabled {
		e.model.AttachRarity(e.analyzer)
	} else {
		e.model.DetachRarity()
	}

	sel, err := selection.New(e.model, records, encoder, e.config.Selection,
		selection.WithRandomSource(e.rng),
		selection.WithLogger(e.logger),
		selection.WithClock(e.now),
	)
	if err != nil {
		return fmt.Errorf("create selector: %w", err)
	}

	e.records = records
	e.encoder = encoder
	e.selector = sel

	e.logger.Info().
		Int("records", len(records)).
		Int("features", encoder.Dictionary().Size()).
		Bool("rarity", e.rarityEnabled).
		Dur("duration", time.Since(start)).
		Msg("catalog loaded")
	return nil
}

// Loaded reports whether a catalog has been loaded.
func (e *Engine) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selector != nil
}

// NextPair selects the next pair to show. It reports false when no pair is
// available: fewer than two records, every eligible pair used, or the
// target reached outside refinement.
func (e *Engine) NextPair() (PairView, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return PairView{}, false, ErrNoCatalog
	}

	start := time.Now()
	sel, ok, err := e.selector.Next()
	if err != nil {
		return PairView{}, false, fmt.Errorf("select pair: %w", err)
	}
	if !ok {
		e.logger.Debug().Int("comparisons", e.model.TotalComparisons()).Msg("no pair available")
		return PairView{}, false, nil
	}
	metrics.RecordPairSelection(sel.Phase.String(), time.Since(start))

	first, _ := e.selector.Record(sel.Pair.First)
	second, _ := e.selector.Record(sel.Pair.Second)

	e.logger.Debug().
		Int("first", sel.Pair.First).
		Int("second", sel.Pair.Second).
		Str("phase", sel.Phase.String()).
		Float64("uncertainty", sel.Uncertainty).
		Msg("pair selected")

	return PairView{
		Selection: sel,
		First:     *first,
		Second:    *second,
		Progress:  e.selector.Progress(),
	}, true, nil
}

// RecordChoice applies the user's answer for a shown pair.
func (e *Engine) RecordChoice(pair selection.Pair, outcome selection.Outcome) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return ErrNoCatalog
	}
	if err := e.selector.RecordChoice(pair, outcome); err != nil {
		return err
	}

	confidence := e.model.Confidence()
	metrics.RecordComparison(outcome.String())
	metrics.ObserveConfidence(confidence)

	e.logger.Debug().
		Int("first", pair.First).
		Int("second", pair.Second).
		Str("outcome", outcome.String()).
		Int("decisions", e.model.ActualDecisions()).
		Float64("confidence", confidence).
		Msg("choice recorded")
	return nil
}

// Progress reports comparisons made against the target. Zero without a catalog.
func (e *Engine) Progress() selection.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return selection.Progress{}
	}
	return e.selector.Progress()
}

// Rank scores the whole catalog, highest first, ties by id.
func (e *Engine) Rank() ([]ScoredRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rankLocked()
}

// RankDiverse returns the top k records reordered by the configured reranker.
// Without a reranker, or with MMR lambda 1, it is the top k of Rank.
func (e *Engine) RankDiverse(ctx context.Context, k int) ([]ScoredRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rr := e.reranker
	if e.config.Diversity.MMRLambda >= 1 {
		rr = nil
	}
	return e.rerankLocked(ctx, rr, k)
}

// RankWith returns the top k records reordered by rr. A nil rr truncates.
func (e *Engine) RankWith(ctx context.Context, rr Reranker, k int) ([]ScoredRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rerankLocked(ctx, rr, k)
}

func (e *Engine) rerankLocked(ctx context.Context, rr Reranker, k int) ([]ScoredRecord, error) {
	ranked, err := e.rankLocked()
	if err != nil {
		return nil, err
	}

	k = e.config.ClampK(k)
	if rr == nil {
		if len(ranked) > k {
			ranked = ranked[:k]
		}
		return ranked, nil
	}

	start := time.Now()
	out := rr.Rerank(ctx, ranked, k)
	for i := range out {
		out[i].Rank = i + 1
	}
	e.logger.Debug().
		Str("reranker", rr.Name()).
		Int("k", k).
		Dur("duration", time.Since(start)).
		Msg("ranking reranked")
	return out, nil
}

func (e *Engine) rankLocked() ([]ScoredRecord, error) {
	if e.selector == nil {
		return nil, ErrNoCatalog
	}

	ranked, err := e.selector.Rank()
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	weights := e.model.Weights()
	dict := e.encoder.Dictionary()
	out := make([]ScoredRecord, len(ranked))
	for i := range ranked {
		rec := ranked[i].Record
		out[i] = ScoredRecord{
			Record:  rec,
			Score:   ranked[i].Score,
			Rank:    i + 1,
			Reasons: reasons(weights, e.encoder.Encode(&rec), dict),
		}
	}
	return out, nil
}

// reasons returns the names of the features contributing most to a positive score.
//
//nolint:gocritic // SparseVector is small
func reasons(weights []float64, v features.SparseVector, dict *features.Dictionary) []string {
	top := cache.NewTopK[string](reasonsPerRecord)
	for _, entry := range v.Entries {
		contribution := weights[entry.Index] * entry.Value
		if contribution <= 0 {
			continue
		}
		name, ok := dict.Name(entry.Index)
		if !ok {
			continue
		}
		top.Push(name, contribution)
	}
	return top.Values()
}

// Summary reports the learned likes and dislikes.
func (e *Engine) Summary() (preference.Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return preference.Summary{}, ErrNoCatalog
	}
	return e.model.Summary()
}

// Confidence returns the confidence breakdown. Zero without a catalog.
func (e *Engine) Confidence() preference.ConfidenceBreakdown {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return preference.ConfidenceBreakdown{}
	}
	return e.model.ConfidenceBreakdown()
}

// Snapshot captures the learned state.
func (e *Engine) Snapshot() (preference.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return preference.Snapshot{}, ErrNoCatalog
	}
	return e.model.Snapshot()
}

// Restore replaces the learned state with snap. Used pairs are kept.
//
//nolint:gocritic // snapshot is consumed by value
func (e *Engine) Restore(snap preference.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return ErrNoCatalog
	}
	if err := e.model.Restore(snap); err != nil {
		e.logger.Warn().Err(err).Int("features", len(snap.Features)).Msg("snapshot rejected")
		return err
	}

	e.logger.Info().
		Int("decisions", snap.ActualDecisions).
		Int("comparisons", snap.TotalComparisons).
		Time("saved_at", snap.SavedAt).
		Msg("snapshot restored")
	return nil
}

// ConfigureRarity sets the importance bounds and enables rarity weighting.
func (e *Engine) ConfigureRarity(minMultiplier, maxMultiplier float64, smoothing bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.analyzer.Configure(minMultiplier, maxMultiplier, smoothing); err != nil {
		return err
	}
	e.rarityEnabled = true
	e.model.AttachRarity(e.analyzer)

	e.logger.Info().
		Float64("min", minMultiplier).
		Float64("max", maxMultiplier).
		Bool("smoothing", smoothing).
		Msg("rarity configured")
	return nil
}

// DisableRarity turns off rarity weighting.
func (e *Engine) DisableRarity() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rarityEnabled = false
	e.model.DetachRarity()
}

// RarityAnalysis returns the current catalog's frequency table, or nil.
func (e *Engine) RarityAnalysis() *rarity.Analysis {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.analyzer.Current()
}

// BoostFeature nudges one named feature up or down.
func (e *Engine) BoostFeature(name string, dir preference.Direction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return ErrNoCatalog
	}
	if err := e.model.BoostFeature(name, dir); err != nil {
		return err
	}
	e.logger.Debug().Str("feature", name).Int("direction", int(dir)).Msg("feature boosted")
	return nil
}

// ApplyPrior blends an external per-feature prior into the weights.
func (e *Engine) ApplyPrior(contribution map[string]float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return ErrNoCatalog
	}
	if err := e.model.ApplyPrior(contribution); err != nil {
		return err
	}
	e.logger.Info().Int("features", len(contribution)).Msg("prior applied")
	return nil
}

// EnterRefinement lets the session continue past its target with pair reuse.
func (e *Engine) EnterRefinement() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return ErrNoCatalog
	}
	e.selector.EnterRefinement()
	return nil
}

// Reset clears the learned state and used pairs but keeps the catalog.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return ErrNoCatalog
	}
	e.selector.Reset()
	e.logger.Info().Msg("session reset")
	return nil
}

// Records returns the loaded catalog, sorted by id.
func (e *Engine) Records() []catalog.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]catalog.Record, len(e.records))
	copy(out, e.records)
	return out
}

// Record looks up a loaded record by id.
func (e *Engine) Record(id int) (catalog.Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return catalog.Record{}, false
	}
	rec, ok := e.selector.Record(id)
	if !ok {
		return catalog.Record{}, false
	}
	return *rec, true
}

// History returns the recorded comparisons, oldest first.
func (e *Engine) History() []selection.Comparison {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selector == nil {
		return nil
	}
	return e.selector.History()
}

// Stats reports engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{
		Records:       len(e.records),
		Decisions:     e.model.ActualDecisions(),
		Comparisons:   e.model.TotalComparisons(),
		ModelVersion:  e.model.Version(),
		RarityEnabled: e.rarityEnabled,
	}
	if e.selector != nil {
		s.Features = e.encoder.Dictionary().Size()
		s.Refinement = e.selector.Refinement()
		s.Confidence = e.model.Confidence()
		s.ScoreCache = e.selector.ScoreCacheStats()
		s.EncodingCache = e.encoder.CacheStats()
	}
	return s
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}
