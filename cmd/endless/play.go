// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/endless/internal/catalog"
	"github.com/tomtom215/endless/internal/config"
	"github.com/tomtom215/endless/internal/logging"
	"github.com/tomtom215/endless/internal/recommend"
	"github.com/tomtom215/endless/internal/recommend/preference"
	"github.com/tomtom215/endless/internal/recommend/selection"
	"github.com/tomtom215/endless/internal/recommend/storage"
)

const playHelp = `answers: 1 first, 2 second, y both liked, n both disliked, s skip, q quit`

// PlayOptions configures an interactive session. Nil readers and writers
// default to the process streams.
type PlayOptions struct {
	Restore string
	Save    string
	Top     int
	Stdin   io.Reader
	Stdout  io.Writer
}

func newPlayCmd() *cobra.Command {
	var opts PlayOptions
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Compare games interactively in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts.Stdin = cmd.InOrStdin()
			opts.Stdout = cmd.OutOrStdout()
			return runPlay(cmd.Context(), cfg, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Restore, "restore", "", "Snapshot key to resume from")
	cmd.Flags().StringVar(&opts.Save, "save", "", "Snapshot key to save to on exit")
	cmd.Flags().IntVar(&opts.Top, "top", 10, "Tags to show per side of the summary")
	return cmd
}

//nolint:gocritic // options struct is small and read-only
func runPlay(ctx context.Context, cfg *config.Config, opts PlayOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	engine, store, err := openEngine(ctx, cfg, opts.Restore, opts.Save != "")
	if err != nil {
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	made, err := playLoop(engine, opts.Stdin, opts.Stdout)
	if err != nil {
		return err
	}
	logging.Debug().Int("comparisons", made).Msg("play loop finished")

	if err := printSummary(opts.Stdout, engine, opts.Top); err != nil {
		return err
	}

	if opts.Save != "" {
		snap, err := engine.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot session: %w", err)
		}
		meta, err := store.Save(ctx, opts.Save, snap)
		if err != nil {
			return fmt.Errorf("save snapshot %q: %w", opts.Save, err)
		}
		fmt.Fprintf(opts.Stdout, "saved %q (version %d, %d decisions)\n", meta.Key, meta.Version, meta.Decisions)
	}
	return nil
}

// openEngine loads the catalog into a fresh engine, restoring restoreKey
// when set. A store is opened when restoring or when needStore is true.
func openEngine(ctx context.Context, cfg *config.Config, restoreKey string, needStore bool) (*recommend.Engine, storage.Store, error) {
	records, err := loadCatalog(ctx, cfg, logging.WithComponent("catalog"))
	if err != nil {
		return nil, nil, err
	}
	engine, err := newEngineFactory(cfg, records, logging.WithComponent("engine"))(0)
	if err != nil {
		return nil, nil, err
	}
	if restoreKey == "" && !needStore {
		return engine, nil, nil
	}

	store, err := storage.Open(cfg.Store())
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}
	if restoreKey != "" {
		snap, meta, err := store.Load(ctx, restoreKey)
		if err == nil {
			err = engine.Restore(snap)
		}
		if err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("restore snapshot %q: %w", restoreKey, err)
		}
		logging.Info().Str("key", meta.Key).Int("version", meta.Version).Msg("snapshot restored")
	}
	return engine, store, nil
}

// playLoop shows pairs until the selector runs out, the input ends or the
// user quits. It returns the number of answers recorded.
func playLoop(engine *recommend.Engine, in io.Reader, out io.Writer) (int, error) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, playHelp)

	made := 0
	for {
		view, ok, err := engine.NextPair()
		if err != nil {
			return made, err
		}
		if !ok {
			fmt.Fprintln(out, "\nno more pairs to compare")
			return made, nil
		}
		printPair(out, view)

		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				return made, scanner.Err()
			}
			outcome, quit, perr := parseAnswer(scanner.Text())
			if quit {
				return made, nil
			}
			if perr != nil {
				fmt.Fprintln(out, playHelp)
				continue
			}
			if err := engine.RecordChoice(view.Pair, outcome); err != nil {
				if errors.Is(err, selection.ErrTargetReached) {
					return made, nil
				}
				return made, err
			}
			made++
			break
		}
	}
}

// parseAnswer maps a terminal answer to an outcome. quit is true for q,
// quit and exit.
func parseAnswer(s string) (outcome selection.Outcome, quit bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "q", "quit", "exit":
		return 0, true, nil
	case "1":
		return selection.OutcomeFirst, false, nil
	case "2":
		return selection.OutcomeSecond, false, nil
	case "y", "both":
		return selection.OutcomeBothLiked, false, nil
	case "n", "neither":
		return selection.OutcomeBothDisliked, false, nil
	case "s":
		return selection.OutcomeSkip, false, nil
	}
	outcome, err = selection.ParseOutcome(s)
	return outcome, false, err
}

func printPair(out io.Writer, view recommend.PairView) {
	fmt.Fprintf(out, "\n[%d/%d] %s\n", view.Progress.Current+1, view.Progress.Total, view.Phase)
	fmt.Fprintf(out, "  1) %s  %s\n", view.First.Name, strings.Join(topTags(view.First, 3), ", "))
	fmt.Fprintf(out, "  2) %s  %s\n", view.Second.Name, strings.Join(topTags(view.Second, 3), ", "))
}

// topTags returns the n most voted tags of r, ties broken by name.
func topTags(r catalog.Record, n int) []string {
	names := make([]string, 0, len(r.Tags))
	for name := range r.Tags {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		vi, vj := r.Tags[names[i]], r.Tags[names[j]]
		if vi != vj {
			return vi > vj
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

func printSummary(out io.Writer, engine *recommend.Engine, top int) error {
	summary, err := engine.Summary()
	if errors.Is(err, preference.ErrNotInitialized) {
		return nil
	}
	if err != nil {
		return err
	}
	summary = summary.Top(top)

	fmt.Fprintf(out, "\nconfidence %.0f%%\n", engine.Confidence().Total*100)
	fmt.Fprintln(out, "liked:")
	for _, fw := range summary.Liked {
		fmt.Fprintf(out, "  %-24s %+.3f\n", fw.Name, fw.Weight)
	}
	fmt.Fprintln(out, "disliked:")
	for _, fw := range summary.Disliked {
		fmt.Fprintf(out, "  %-24s %+.3f\n", fw.Name, fw.Weight)
	}
	return nil
}
