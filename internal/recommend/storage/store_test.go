// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/endless/internal/recommend/preference"
)

func testSnapshot(decisions int) preference.Snapshot {
	return preference.Snapshot{
		Weights:          []float64{0.25, -0.5, 0},
		ActualDecisions:  decisions,
		TotalComparisons: decisions + 1,
		Features:         []string{"Action", "Horror", "Puzzle"},
		SavedAt:          time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func equalSnapshots(a, b preference.Snapshot) bool {
	if a.ActualDecisions != b.ActualDecisions || a.TotalComparisons != b.TotalComparisons {
		return false
	}
	if !a.SavedAt.Equal(b.SavedAt) || len(a.Weights) != len(b.Weights) || len(a.Features) != len(b.Features) {
		return false
	}
	for i := range a.Weights {
		if a.Weights[i] != b.Weights[i] {
			return false
		}
	}
	for i := range a.Features {
		if a.Features[i] != b.Features[i] {
			return false
		}
	}
	return true
}

func newStores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	badgerStore, err := OpenBadgerStore("", true)
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	t.Cleanup(func() { _ = badgerStore.Close() })

	return map[string]Store{
		"file":   fileStore,
		"badger": badgerStore,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			want := testSnapshot(4)
			meta, err := store.Save(ctx, "session-1", want)
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if meta.Key != "session-1" || meta.Version != 1 {
				t.Errorf("Save() metadata = %+v", meta)
			}
			if meta.Features != 3 || meta.Decisions != 4 || meta.Comparisons != 5 {
				t.Errorf("Save() counters = %+v", meta)
			}
			if meta.SizeBytes <= 0 {
				t.Errorf("SizeBytes = %d, want > 0", meta.SizeBytes)
			}

			got, loaded, err := store.Load(ctx, "session-1")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !equalSnapshots(got, want) {
				t.Errorf("Load() = %+v, want %+v", got, want)
			}
			if loaded.Version != 1 {
				t.Errorf("loaded version = %d, want 1", loaded.Version)
			}
		})
	}
}

func TestStore_VersionsIncrease(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for i := 1; i <= 3; i++ {
				meta, err := store.Save(ctx, "k", testSnapshot(i))
				if err != nil {
					t.Fatal(err)
				}
				if meta.Version != i {
					t.Errorf("save %d: version = %d", i, meta.Version)
				}
			}

			got, meta, err := store.Load(ctx, "k")
			if err != nil {
				t.Fatal(err)
			}
			if meta.Version != 3 || got.ActualDecisions != 3 {
				t.Errorf("Load() = v%d decisions %d, want latest", meta.Version, got.ActualDecisions)
			}
		})
	}
}

func TestStore_NotFoundAndDelete(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrSnapshotNotFound) {
				t.Errorf("Load(missing) error = %v, want ErrSnapshotNotFound", err)
			}
			if err := store.Delete(ctx, "missing"); err != nil {
				t.Errorf("Delete(missing) error = %v", err)
			}

			if _, err := store.Save(ctx, "gone", testSnapshot(1)); err != nil {
				t.Fatal(err)
			}
			if err := store.Delete(ctx, "gone"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, _, err := store.Load(ctx, "gone"); !errors.Is(err, ErrSnapshotNotFound) {
				t.Errorf("Load after Delete error = %v, want ErrSnapshotNotFound", err)
			}

			meta, err := store.Save(ctx, "gone", testSnapshot(1))
			if err != nil {
				t.Fatal(err)
			}
			if meta.Version != 1 {
				t.Errorf("version after delete = %d, want 1", meta.Version)
			}
		})
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"b", "a", "c"} {
				if _, err := store.Save(ctx, key, testSnapshot(1)); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := store.Save(ctx, "a", testSnapshot(2)); err != nil {
				t.Fatal(err)
			}

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(list) != 3 {
				t.Fatalf("len(List()) = %d, want 3", len(list))
			}
			if list[0].Key != "a" || list[1].Key != "b" || list[2].Key != "c" {
				t.Errorf("List() keys = %s, %s, %s", list[0].Key, list[1].Key, list[2].Key)
			}
			if list[0].Version != 2 {
				t.Errorf("List()[a].Version = %d, want 2", list[0].Version)
			}
		})
	}
}

func TestStore_InvalidKeyAndContext(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
				if _, err := store.Save(context.Background(), key, testSnapshot(1)); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Save(%q) error = %v, want ErrInvalidKey", key, err)
				}
			}
			if _, err := store.Save(canceled, "ok", testSnapshot(1)); !errors.Is(err, context.Canceled) {
				t.Errorf("Save with canceled context error = %v", err)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	valid := []string{"a", "session-1", "3f2a9c1e-0b5d-4c8e-9f61-2d7a8b4c5e6f", "user.profile_v2"}
	for _, key := range valid {
		if err := ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) = %v", key, err)
		}
	}
}

func TestOpen(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		store, err := Open(Config{Backend: BackendFile, Path: t.TempDir(), Retain: 2})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer store.Close()
		if _, err := store.Save(context.Background(), "k", testSnapshot(1)); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("memory", func(t *testing.T) {
		store, err := Open(Config{Backend: BackendMemory})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer store.Close()
		if _, _, err := store.Load(context.Background(), "k"); !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("Load() error = %v", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		if _, err := Open(Config{Backend: "s3"}); err == nil {
			t.Error("expected error for unknown backend")
		}
	})

	t.Run("file without path", func(t *testing.T) {
		if _, err := Open(Config{Backend: BackendFile}); err == nil {
			t.Error("expected error for missing path")
		}
	})
}
