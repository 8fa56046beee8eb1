// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package rarity

import (
	"math"
	"testing"

	"github.com/tomtom215/endless/internal/catalog"
)

func rarityCatalog() []catalog.Record {
	return []catalog.Record{
		{ID: 1, Tags: map[string]float64{"Common": 10, "Rare": 1}},
		{ID: 2, Tags: map[string]float64{"Common": 5, "Medium": 3}},
		{ID: 3, Tags: map[string]float64{"Common": 1, "Medium": 8, "Zero": 0}},
		{ID: 4, Tags: map[string]float64{"Common": 2}},
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	a := Analyze(rarityCatalog())

	if a.TotalRecords != 4 {
		t.Errorf("TotalRecords = %d, want 4", a.TotalRecords)
	}

	wantDF := map[string]int{"Common": 4, "Medium": 2, "Rare": 1}
	for name, want := range wantDF {
		if got := a.DocumentFrequency[name]; got != want {
			t.Errorf("df(%s) = %d, want %d", name, got, want)
		}
	}
	if _, ok := a.DocumentFrequency["Zero"]; ok {
		t.Error("zero-weight tag should not count toward document frequency")
	}

	if a.InverseFrequency["Common"] != 0 {
		t.Errorf("idf(Common) = %f, want 0 for a tag present in every record", a.InverseFrequency["Common"])
	}
	if got, want := a.InverseFrequency["Rare"], math.Log(4); math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(Rare) = %f, want %f", got, want)
	}
}

func TestAnalyze_IDFMonotonic(t *testing.T) {
	t.Parallel()

	a := Analyze(rarityCatalog())
	if !(a.InverseFrequency["Rare"] >= a.InverseFrequency["Medium"] &&
		a.InverseFrequency["Medium"] >= a.InverseFrequency["Common"]) {
		t.Errorf("idf not monotone in df: %v", a.InverseFrequency)
	}
}

func TestAnalyzer_Importance(t *testing.T) {
	t.Parallel()

	t.Run("never analyzed returns one", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(DefaultConfig())
		if got := a.Importance("Rare"); got != 1.0 {
			t.Errorf("Importance() = %f, want 1.0", got)
		}
	})

	t.Run("smoothing clamps", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(DefaultConfig())
		a.Analyze(rarityCatalog())

		if got := a.Importance("Common"); got != DefaultMinMultiplier {
			t.Errorf("Importance(Common) = %f, want %f", got, DefaultMinMultiplier)
		}
		if got, want := a.Importance("Rare"), math.Log(4); math.Abs(got-want) > 1e-12 {
			t.Errorf("Importance(Rare) = %f, want %f", got, want)
		}
		if got := a.Importance("Unknown"); got != 1.0 {
			t.Errorf("Importance(Unknown) = %f, want 1.0", got)
		}
	})

	t.Run("upper clamp", func(t *testing.T) {
		t.Parallel()
		records := make([]catalog.Record, 100)
		for i := range records {
			records[i] = catalog.Record{ID: i + 1, Tags: map[string]float64{"Filler": 1}}
		}
		records[0].Tags["Unique"] = 1

		a := NewAnalyzer(DefaultConfig())
		a.Analyze(records)
		if got := a.Importance("Unique"); got != DefaultMaxMultiplier {
			t.Errorf("Importance(Unique) = %f, want %f", got, DefaultMaxMultiplier)
		}
	})

	t.Run("raw idf without smoothing", func(t *testing.T) {
		t.Parallel()
		a := NewAnalyzer(Config{MinMultiplier: 0.5, MaxMultiplier: 3, Smoothing: false})
		a.Analyze(rarityCatalog())
		if got := a.Importance("Common"); got != 0 {
			t.Errorf("Importance(Common) = %f, want 0", got)
		}
	})
}

func TestAnalyzer_CachesByFingerprint(t *testing.T) {
	t.Parallel()

	shared := NewSharedCache()
	a := NewAnalyzer(DefaultConfig(), WithSharedCache(shared))
	b := NewAnalyzer(DefaultConfig(), WithSharedCache(shared))

	records := rarityCatalog()
	first := a.Analyze(records)
	second := b.Analyze(records)
	if first != second {
		t.Error("same fingerprint should return the cached analysis")
	}

	third := a.Analyze(records[:3])
	if third == first {
		t.Error("changed catalog should be re-analyzed")
	}
	if a.Current() != third {
		t.Error("Current() should track the latest analysis")
	}
	if shared.Len() != 2 {
		t.Errorf("shared cache entries = %d, want 2", shared.Len())
	}
}

func TestAnalyzer_Configure(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(DefaultConfig())
	a.Analyze(rarityCatalog())

	if err := a.Configure(1.0, 1.2, true); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if got := a.Importance("Rare"); got != 1.2 {
		t.Errorf("Importance(Rare) = %f, want 1.2", got)
	}
	if a.DocumentFrequency("Medium") != 2 {
		t.Errorf("DocumentFrequency(Medium) = %d, want 2", a.DocumentFrequency("Medium"))
	}

	for _, tc := range []struct {
		name     string
		min, max float64
	}{
		{"zero min", 0, 1},
		{"max below min", 2, 1},
	} {
		if err := a.Configure(tc.min, tc.max, true); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
	if a.Config().MaxMultiplier != 1.2 {
		t.Error("failed Configure must not change the config")
	}

	fallback := NewAnalyzer(Config{MinMultiplier: -1, MaxMultiplier: 0})
	if fallback.Config().MinMultiplier != DefaultMinMultiplier {
		t.Error("invalid config should fall back to defaults")
	}
}
