// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package selection

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tomtom215/endless/internal/catalog"
	"github.com/tomtom215/endless/internal/recommend/features"
	"github.com/tomtom215/endless/internal/recommend/preference"
)

// distinctCatalog returns n records whose names and tag profiles are all
// dissimilar.
func distinctCatalog(n int) []catalog.Record {
	records := make([]catalog.Record, n)
	for i := range records {
		records[i] = catalog.Record{
			ID:   i + 1,
			Name: fmt.Sprintf("Title %c%c", 'A'+i%26, 'a'+i/26),
			Tags: map[string]float64{
				fmt.Sprintf("Tag%d", i): 10,
				"Shared":                float64(1 + i%3),
			},
		}
	}
	return records
}

func newTestSelector(t *testing.T, records []catalog.Record, cfg Config) *Selector {
	t.Helper()

	model, err := preference.NewModel(preference.DefaultConfig())
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	enc := features.NewCatalogEncoder(records, true)
	model.Initialize(enc.Dictionary())

	s, err := New(model, records, enc, cfg, WithRandomSource(NewSeededSource(7)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

var outcomeCycle = []Outcome{OutcomeFirst, OutcomeSecond, OutcomeSkip, OutcomeBothLiked, OutcomeFirst, OutcomeBothDisliked}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	records := distinctCatalog(3)
	enc := features.NewCatalogEncoder(records, false)

	uninit, _ := preference.NewModel(preference.DefaultConfig())
	if _, err := New(uninit, records, enc, DefaultConfig()); !errors.Is(err, preference.ErrNotInitialized) {
		t.Errorf("error = %v, want ErrNotInitialized", err)
	}

	model, _ := preference.NewModel(preference.DefaultConfig())
	model.Initialize(features.NewDictionary([]string{"other"}))
	if _, err := New(model, records, enc, DefaultConfig()); !errors.Is(err, preference.ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}

	model.Initialize(enc.Dictionary())
	bad := DefaultConfig()
	bad.TargetComparisons = 0
	if _, err := New(model, records, enc, bad); err == nil {
		t.Error("expected config validation error")
	}
}

func TestSelector_TinyCatalogs(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1} {
		s := newTestSelector(t, distinctCatalog(n), DefaultConfig())
		if _, ok, err := s.Next(); ok || err != nil {
			t.Errorf("n=%d: Next() = %v, %v; want no pair", n, ok, err)
		}
		if p := s.Progress(); p.Total != 0 {
			t.Errorf("n=%d: Progress().Total = %d, want 0", n, p.Total)
		}
	}
}

func TestSelector_TwoRecordBootstrap(t *testing.T) {
	t.Parallel()

	records := []catalog.Record{
		{ID: 10, Name: "Alpha", Tags: map[string]float64{"Only": 100}},
		{ID: 20, Name: "Beta", Tags: map[string]float64{}},
	}
	s := newTestSelector(t, records, DefaultConfig())

	if p := s.Progress(); p.Total != 1 || p.Current != 0 {
		t.Fatalf("Progress() = %+v, want 0/1", p)
	}

	sel, ok, err := s.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v", ok, err)
	}
	if sel.Phase != PhaseBootstrap {
		t.Errorf("Phase = %s, want bootstrap", sel.Phase)
	}
	if sel.Pair.Key() != NewPairKey(10, 20) {
		t.Errorf("Pair = %+v", sel.Pair)
	}

	if err := s.RecordChoice(sel.Pair, OutcomeFirst); err != nil {
		t.Fatalf("RecordChoice() error = %v", err)
	}
	if _, ok, _ := s.Next(); ok {
		t.Error("Next() after the only pair should report no pair")
	}
	if p := s.Progress(); p.Current != 1 || p.Total != 1 {
		t.Errorf("Progress() = %+v, want 1/1", p)
	}
}

func TestSelector_NoRepeatedPairs(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TargetComparisons = 100
	records := distinctCatalog(8)
	s := newTestSelector(t, records, cfg)

	seen := make(map[PairKey]bool)
	for step := 0; ; step++ {
		before := s.Progress()
		sel, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if !ok {
			break
		}
		key := sel.Pair.Key()
		if seen[key] {
			t.Fatalf("pair %+v shown twice", key)
		}
		seen[key] = true

		if step < cfg.BootstrapDecisions && sel.Phase != PhaseBootstrap {
			t.Errorf("step %d: Phase = %s, want bootstrap", step, sel.Phase)
		}

		if err := s.RecordChoice(sel.Pair, outcomeCycle[step%len(outcomeCycle)]); err != nil {
			t.Fatalf("RecordChoice() error = %v", err)
		}
		after := s.Progress()
		if after.Current != before.Current+1 {
			t.Errorf("Current moved %d -> %d, want +1", before.Current, after.Current)
		}
		if after.Current > after.Total {
			t.Errorf("Current %d exceeds Total %d", after.Current, after.Total)
		}
	}

	if len(seen) != MaxUniquePairs(len(records)) {
		t.Errorf("distinct pairs shown = %d, want %d", len(seen), MaxUniquePairs(len(records)))
	}
	if s.UsedPairs() != len(seen) {
		t.Errorf("UsedPairs() = %d, want %d", s.UsedPairs(), len(seen))
	}
}

func TestSelector_StopsAtTarget(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TargetComparisons = 5
	s := newTestSelector(t, distinctCatalog(20), cfg)

	for i := 0; i < 5; i++ {
		sel, ok, err := s.Next()
		if err != nil || !ok {
			t.Fatalf("Next() #%d = %v, %v", i, ok, err)
		}
		if err := s.RecordChoice(sel.Pair, OutcomeFirst); err != nil {
			t.Fatal(err)
		}
	}

	if _, ok, _ := s.Next(); ok {
		t.Error("Next() past the target should report no pair")
	}
	if err := s.RecordChoice(Pair{First: 1, Second: 2}, OutcomeFirst); !errors.Is(err, ErrTargetReached) {
		t.Errorf("RecordChoice() error = %v, want ErrTargetReached", err)
	}
}

func TestSelector_GuidedAfterBootstrap(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TargetComparisons = 15
	s := newTestSelector(t, distinctCatalog(40), cfg)

	phases := make([]Phase, 0, cfg.TargetComparisons)
	for {
		sel, ok, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		phases = append(phases, sel.Phase)
		if sel.Phase == PhaseGuided && (sel.Depth < 10 || sel.Depth > 150) {
			t.Errorf("guided depth %d outside [10, 150]", sel.Depth)
		}
		if sel.Uncertainty < 0 || sel.Uncertainty > 1 {
			t.Errorf("uncertainty %f outside [0, 1]", sel.Uncertainty)
		}
		if err := s.RecordChoice(sel.Pair, OutcomeFirst); err != nil {
			t.Fatal(err)
		}
	}

	if len(phases) != cfg.TargetComparisons {
		t.Fatalf("comparisons = %d, want %d", len(phases), cfg.TargetComparisons)
	}
	for i, p := range phases {
		if i < cfg.BootstrapDecisions && p != PhaseBootstrap {
			t.Errorf("step %d: phase %s, want bootstrap", i, p)
		}
		if i >= cfg.BootstrapDecisions && p == PhaseBootstrap {
			t.Errorf("step %d: still bootstrapping", i)
		}
	}
}

func TestSelector_SimilarityFilter(t *testing.T) {
	t.Parallel()

	records := []catalog.Record{
		{ID: 1, Name: "Dark Souls", Tags: map[string]float64{"a": 1}},
		{ID: 2, Name: "DARK SOULS™: Remastered", Tags: map[string]float64{"b": 1}},
		{ID: 3, Name: "Foo", Tags: map[string]float64{"c": 1, "d": 1}},
		{ID: 4, Name: "Bar", Tags: map[string]float64{"c": 2, "d": 2}},
	}
	cfg := DefaultConfig()
	cfg.TargetComparisons = 10
	s := newTestSelector(t, records, cfg)

	shown := 0
	for {
		sel, ok, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		key := sel.Pair.Key()
		if key == NewPairKey(1, 2) || key == NewPairKey(3, 4) {
			t.Fatalf("similar pair %+v was shown", key)
		}
		shown++
		if err := s.RecordChoice(sel.Pair, OutcomeSecond); err != nil {
			t.Fatal(err)
		}
	}
	if shown != 4 {
		t.Errorf("shown = %d, want 4", shown)
	}
}

func TestSelector_FranchisePairsShown(t *testing.T) {
	t.Parallel()

	records := []catalog.Record{
		{ID: 1, Name: "Star Wars: Battlefront", Tags: map[string]float64{"shooter": 1}},
		{ID: 2, Name: "Star Wars: Knights of the Old Republic", Tags: map[string]float64{"rpg": 1}},
		{ID: 3, Name: "Batman: Arkham Asylum", Tags: map[string]float64{"action": 1}},
		{ID: 4, Name: "Batman: Arkham Knight", Tags: map[string]float64{"open world": 1}},
	}
	cfg := DefaultConfig()
	cfg.TargetComparisons = 10
	s := newTestSelector(t, records, cfg)

	seen := make(map[PairKey]bool)
	for {
		sel, ok, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		seen[sel.Pair.Key()] = true
		if err := s.RecordChoice(sel.Pair, OutcomeFirst); err != nil {
			t.Fatal(err)
		}
	}
	for _, key := range []PairKey{NewPairKey(1, 2), NewPairKey(3, 4)} {
		if !seen[key] {
			t.Errorf("same-franchise pair %+v was never shown", key)
		}
	}
	if len(seen) != 6 {
		t.Errorf("shown %d distinct pairs, want 6", len(seen))
	}
}

func TestSelector_Determinism(t *testing.T) {
	t.Parallel()

	run := func() []Pair {
		cfg := DefaultConfig()
		cfg.TargetComparisons = 12
		s := newTestSelector(t, distinctCatalog(25), cfg)
		var pairs []Pair
		for i := 0; ; i++ {
			sel, ok, err := s.Next()
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				return pairs
			}
			pairs = append(pairs, sel.Pair)
			if err := s.RecordChoice(sel.Pair, outcomeCycle[i%len(outcomeCycle)]); err != nil {
				t.Fatal(err)
			}
		}
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("pair %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSelector_RecordChoiceErrors(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t, distinctCatalog(4), DefaultConfig())

	tests := []struct {
		name    string
		pair    Pair
		outcome Outcome
		wantErr error
	}{
		{"same record", Pair{First: 1, Second: 1}, OutcomeFirst, ErrInvalidPair},
		{"unknown first", Pair{First: 99, Second: 1}, OutcomeFirst, ErrUnknownRecord},
		{"unknown second", Pair{First: 1, Second: 99}, OutcomeFirst, ErrUnknownRecord},
		{"invalid outcome", Pair{First: 1, Second: 2}, Outcome(42), ErrInvalidOutcome},
	}
	for _, tt := range tests {
		if err := s.RecordChoice(tt.pair, tt.outcome); !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
	if s.Progress().Current != 0 {
		t.Error("rejected choices must not count")
	}
}

func TestSelector_OutcomeDirection(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t, distinctCatalog(4), DefaultConfig())
	if err := s.RecordChoice(Pair{First: 1, Second: 2}, OutcomeSecond); err != nil {
		t.Fatal(err)
	}

	ranked, err := s.Rank()
	if err != nil {
		t.Fatal(err)
	}
	if ranked[0].Record.ID != 2 {
		t.Errorf("top record = %d, want 2", ranked[0].Record.ID)
	}
	if ranked[len(ranked)-1].Record.ID != 1 {
		t.Errorf("bottom record = %d, want 1", ranked[len(ranked)-1].Record.ID)
	}
	if !s.WasUsed(Pair{First: 2, Second: 1}) {
		t.Error("pair should be marked used in either order")
	}
	hist := s.History()
	if len(hist) != 1 || hist[0].Outcome != OutcomeSecond {
		t.Errorf("History() = %+v", hist)
	}
}

func TestSelector_RankTiesByID(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t, distinctCatalog(5), DefaultConfig())
	ranked, err := s.Rank()
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range ranked {
		if r.Record.ID != i+1 || r.Score != 0 {
			t.Errorf("ranked[%d] = id %d score %f", i, r.Record.ID, r.Score)
		}
	}
}

func TestSelector_ScoreCacheInvalidation(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t, distinctCatalog(4), DefaultConfig())
	if _, err := s.Rank(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Rank(); err != nil {
		t.Fatal(err)
	}
	if s.ScoreCacheStats().Hits != 4 {
		t.Errorf("Hits = %d, want 4", s.ScoreCacheStats().Hits)
	}

	if err := s.RecordChoice(Pair{First: 3, Second: 4}, OutcomeFirst); err != nil {
		t.Fatal(err)
	}
	ranked, err := s.Rank()
	if err != nil {
		t.Fatal(err)
	}
	if ranked[0].Record.ID != 3 {
		t.Errorf("top record = %d, want 3 after update", ranked[0].Record.ID)
	}
	if s.ScoreCacheStats().Clears != 1 {
		t.Errorf("Clears = %d, want 1", s.ScoreCacheStats().Clears)
	}
}

func TestSelector_Refinement(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.RecencyWindow = 1
	records := distinctCatalog(3)
	s := newTestSelector(t, records, cfg)

	var last Pair
	for {
		sel, ok, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		last = sel.Pair
		if err := s.RecordChoice(sel.Pair, OutcomeFirst); err != nil {
			t.Fatal(err)
		}
	}
	if s.UsedPairs() != 3 {
		t.Fatalf("UsedPairs() = %d, want 3", s.UsedPairs())
	}

	s.EnterRefinement()
	if !s.Refinement() {
		t.Fatal("Refinement() = false after EnterRefinement")
	}

	for i := 0; i < 6; i++ {
		sel, ok, err := s.Next()
		if err != nil || !ok {
			t.Fatalf("refinement Next() #%d = %v, %v", i, ok, err)
		}
		if sel.Phase != PhaseRefinement && sel.Phase != PhaseFallback {
			t.Errorf("Phase = %s, want refinement or fallback", sel.Phase)
		}
		if sel.Pair.Key() == last.Key() {
			t.Errorf("pair %+v reused inside the recency window", sel.Pair)
		}
		if err := s.RecordChoice(sel.Pair, OutcomeSecond); err != nil {
			t.Fatalf("RecordChoice() in refinement error = %v", err)
		}
		last = sel.Pair

		p := s.Progress()
		if !p.Refinement || p.Current > p.Total {
			t.Errorf("Progress() = %+v", p)
		}
	}
}

func TestSelector_Reset(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t, distinctCatalog(4), DefaultConfig())
	_ = s.RecordChoice(Pair{First: 1, Second: 2}, OutcomeFirst)
	s.EnterRefinement()
	s.Reset()

	if s.UsedPairs() != 0 || len(s.History()) != 0 || s.Refinement() {
		t.Error("Reset should clear pairs, history and refinement")
	}
	if p := s.Progress(); p.Current != 0 {
		t.Errorf("Progress().Current = %d after Reset", p.Current)
	}
	if rec, ok := s.Record(3); !ok || rec.ID != 3 {
		t.Error("Reset must keep the catalog")
	}
}

func TestPoolSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		p    float64
		n    int
		want int
	}{
		{0.5, 10, 5},
		{0.2, 10, 2},
		{0.1, 10, 2},
		{0.3, 11, 4},
		{0.5, 2, 2},
		{0.5, 3, 2},
	}
	for _, tt := range tests {
		if got := poolSize(tt.p, tt.n); got != tt.want {
			t.Errorf("poolSize(%v, %d) = %d, want %d", tt.p, tt.n, got, tt.want)
		}
	}
}

func TestGuidedPercentile(t *testing.T) {
	t.Parallel()

	for decisions, want := range map[int]float64{3: 0.5, 6: 0.5, 7: 0.3, 14: 0.3, 15: 0.2, 100: 0.2} {
		if got := guidedPercentile(decisions); got != want {
			t.Errorf("guidedPercentile(%d) = %f, want %f", decisions, got, want)
		}
	}
}

func TestMaxUniquePairs(t *testing.T) {
	t.Parallel()

	for n, want := range map[int]int{0: 0, 1: 0, 2: 1, 3: 3, 10: 45} {
		if got := MaxUniquePairs(n); got != want {
			t.Errorf("MaxUniquePairs(%d) = %d, want %d", n, got, want)
		}
	}
}
