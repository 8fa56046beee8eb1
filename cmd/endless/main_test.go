// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/endless/internal/catalog"
	"github.com/tomtom215/endless/internal/config"
	"github.com/tomtom215/endless/internal/recommend/selection"
)

func tagged(id int, name string, tags ...string) catalog.Record {
	r := catalog.Record{ID: id, Name: name, Tags: make(map[string]float64, len(tags))}
	for i, tag := range tags {
		r.Tags[tag] = float64(100 - 10*i)
	}
	return r
}

func testRecords() []catalog.Record {
	return []catalog.Record{
		tagged(10, "Dungeon Crawl", "rpg", "roguelike", "dark"),
		tagged(20, "Kart Party", "racing", "multiplayer", "casual"),
		tagged(30, "Star Empire", "strategy", "space", "4x"),
		tagged(40, "Farm Days", "casual", "simulation", "cozy"),
		tagged(50, "Night Hunt", "horror", "dark", "survival"),
		tagged(60, "Sky Duel", "multiplayer", "shooter", "space"),
	}
}

// testConfig returns defaults pointing at a temporary catalog and file store.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	path := filepath.Join(dir, "master.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create catalog: %v", err)
	}
	if err := catalog.Encode(f, testRecords()); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close catalog: %v", err)
	}

	cfg, err := config.LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Catalog.Path = path
	cfg.Catalog.URL = ""
	cfg.Storage.Backend = "file"
	cfg.Storage.Path = filepath.Join(dir, "snapshots")
	return cfg
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		input   string
		want    selection.Outcome
		quit    bool
		wantErr bool
	}{
		{"1", selection.OutcomeFirst, false, false},
		{" 2 ", selection.OutcomeSecond, false, false},
		{"y", selection.OutcomeBothLiked, false, false},
		{"N", selection.OutcomeBothDisliked, false, false},
		{"s", selection.OutcomeSkip, false, false},
		{"left", selection.OutcomeFirst, false, false},
		{"both_disliked", selection.OutcomeBothDisliked, false, false},
		{"q", 0, true, false},
		{"exit", 0, true, false},
		{"maybe", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, quit, err := parseAnswer(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAnswer(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if quit != tt.quit {
				t.Errorf("quit = %v, want %v", quit, tt.quit)
			}
			if !tt.wantErr && !tt.quit && got != tt.want {
				t.Errorf("outcome = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopTags(t *testing.T) {
	r := catalog.Record{Tags: map[string]float64{"rpg": 50, "dark": 90, "action": 50, "indie": 10}}

	got := topTags(r, 3)
	want := []string{"dark", "action", "rpg"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("topTags() = %v, want %v", got, want)
	}
	if n := len(topTags(r, 10)); n != 4 {
		t.Errorf("topTags(10) returned %d tags, want 4", n)
	}
}

func TestPlayLoop(t *testing.T) {
	cfg := testConfig(t)
	engine, err := newEngineFactory(cfg, testRecords(), zerolog.Nop())(7)
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}

	var out bytes.Buffer
	made, err := playLoop(engine, strings.NewReader("1\nbogus\n2\ny\nq\n"), &out)
	if err != nil {
		t.Fatalf("playLoop() error = %v", err)
	}
	if made != 3 {
		t.Errorf("made = %d, want 3", made)
	}
	if got := engine.Progress().Current; got != 3 {
		t.Errorf("Progress().Current = %d, want 3", got)
	}
	if strings.Count(out.String(), playHelp) != 2 {
		t.Errorf("help should print at start and after the bad answer:\n%s", out.String())
	}
}

func TestPlayLoop_EndOfInput(t *testing.T) {
	cfg := testConfig(t)
	engine, err := newEngineFactory(cfg, testRecords(), zerolog.Nop())(1)
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}

	made, err := playLoop(engine, strings.NewReader(""), &bytes.Buffer{})
	if err != nil || made != 0 {
		t.Errorf("playLoop() = %d, %v; want 0, nil", made, err)
	}
}

func TestNewEngineFactory(t *testing.T) {
	cfg := testConfig(t)
	factory := newEngineFactory(cfg, testRecords(), zerolog.Nop())

	a, err := factory(1)
	if err != nil {
		t.Fatalf("factory(1) error = %v", err)
	}
	b, err := factory(2)
	if err != nil {
		t.Fatalf("factory(2) error = %v", err)
	}
	if a == b {
		t.Fatal("factory returned the same engine twice")
	}
	if a.Stats().Records != len(testRecords()) {
		t.Errorf("Records = %d, want %d", a.Stats().Records, len(testRecords()))
	}
	if a.Config().Seed == b.Config().Seed {
		t.Error("different session seeds should give different engine seeds")
	}
}

func TestPlayThenRank(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	err := runPlay(ctx, cfg, PlayOptions{
		Save:   "me",
		Top:    5,
		Stdin:  strings.NewReader("1\n1\n2\n1\nq\n"),
		Stdout: &out,
	})
	if err != nil {
		t.Fatalf("runPlay() error = %v", err)
	}
	if !strings.Contains(out.String(), `saved "me"`) {
		t.Errorf("missing save confirmation:\n%s", out.String())
	}

	for _, mode := range []string{modePlain, modeDiverse} {
		t.Run(mode, func(t *testing.T) {
			var ranked bytes.Buffer
			if err := runRank(ctx, cfg, rankOptions{Snapshot: "me", K: 3, Mode: mode}, &ranked); err != nil {
				t.Fatalf("runRank() error = %v", err)
			}
			lines := strings.Split(strings.TrimSpace(ranked.String()), "\n")
			if len(lines) != 3 {
				t.Errorf("got %d lines, want 3:\n%s", len(lines), ranked.String())
			}
			if !strings.HasPrefix(strings.TrimSpace(lines[0]), "1.") {
				t.Errorf("first line = %q, want rank 1", lines[0])
			}
		})
	}

	// Resuming keeps the recorded comparisons.
	var resumed bytes.Buffer
	err = runPlay(ctx, cfg, PlayOptions{
		Restore: "me",
		Stdin:   strings.NewReader("q\n"),
		Stdout:  &resumed,
	})
	if err != nil {
		t.Fatalf("resume runPlay() error = %v", err)
	}
	if !strings.Contains(resumed.String(), "[5/") {
		t.Errorf("resumed session should continue at comparison 5:\n%s", resumed.String())
	}
}

func TestRunRank_Errors(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	if err := runRank(ctx, cfg, rankOptions{Snapshot: "missing"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for missing snapshot")
	}

	engine, err := newEngineFactory(cfg, testRecords(), zerolog.Nop())(1)
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}
	if _, err := rankEngine(ctx, engine, "sideways", 3); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestRankCmd_Flags(t *testing.T) {
	cmd := newRankCmd()
	if err := cmd.ParseFlags([]string{"--snapshot", "me", "--mode", "diverse", "-k", "10"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	mode, _ := cmd.Flags().GetString("mode")
	k, _ := cmd.Flags().GetInt("k")
	snapshot, _ := cmd.Flags().GetString("snapshot")
	if mode != modeDiverse || k != 10 || snapshot != "me" {
		t.Errorf("flags = %q/%d/%q, want diverse/10/me", mode, k, snapshot)
	}

	if err := newRankCmd().ParseFlags([]string{"--snapshot", "me", "--diverse"}); err == nil {
		t.Error("expected error for unknown --diverse flag")
	}
}

func TestBuildServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "memory"

	server, registry, err := buildServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildServer() error = %v", err)
	}
	t.Cleanup(func() {
		_ = registry.Close(context.Background())
		_ = registry.Store().Close()
	})

	if server.Addr != cfg.Addr() {
		t.Errorf("Addr = %q, want %q", server.Addr, cfg.Addr())
	}

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Errorf("POST /api/v1/sessions = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if registry.Len() != 1 {
		t.Errorf("registry.Len() = %d, want 1", registry.Len())
	}
}

func TestBuildServer_MissingCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "nope.json")

	if _, _, err := buildServer(context.Background(), cfg); err == nil {
		t.Fatal("expected error for missing catalog")
	}
}
