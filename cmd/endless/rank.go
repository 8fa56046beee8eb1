// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/endless/internal/config"
	"github.com/tomtom215/endless/internal/recommend"
	"github.com/tomtom215/endless/internal/recommend/reranking"
)

// Ranking modes shared with the HTTP API.
const (
	modePlain      = "plain"
	modeDiverse    = "diverse"
	modeCalibrated = "calibrated"
)

type rankOptions struct {
	Snapshot string
	K        int
	Mode     string
}

func newRankCmd() *cobra.Command {
	var opts rankOptions
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank the catalog from a saved snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runRank(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.Snapshot, "snapshot", "s", "", "Snapshot key to rank from")
	cmd.Flags().IntVarP(&opts.K, "k", "k", 0, "Number of games to list (0 uses the configured default)")
	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", modePlain, "Ranking mode: plain, diverse or calibrated")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func runRank(ctx context.Context, cfg *config.Config, opts rankOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Snapshot == "" {
		return errors.New("a snapshot key is required")
	}
	engine, store, err := openEngine(ctx, cfg, opts.Snapshot, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	items, err := rankEngine(ctx, engine, opts.Mode, opts.K)
	if err != nil {
		return err
	}
	printRanking(out, items)
	return nil
}

// rankEngine ranks with the named mode. k is clamped by the engine.
func rankEngine(ctx context.Context, engine *recommend.Engine, mode string, k int) ([]recommend.ScoredRecord, error) {
	switch mode {
	case modePlain, "":
		return engine.RankWith(ctx, nil, k)
	case modeDiverse:
		return engine.RankDiverse(ctx, k)
	case modeCalibrated:
		summary, err := engine.Summary()
		if err != nil {
			return nil, err
		}
		cal := reranking.NewCalibration(reranking.DefaultCalibrationConfig())
		cal.SetTarget(reranking.TargetFromSummary(summary))
		return engine.RankWith(ctx, cal, k)
	default:
		return nil, fmt.Errorf("unknown ranking mode %q", mode)
	}
}

func printRanking(out io.Writer, items []recommend.ScoredRecord) {
	for _, item := range items {
		line := fmt.Sprintf("%3d. %-40s %8.3f", item.Rank, item.Record.Name, item.Score)
		if len(item.Reasons) > 0 {
			line += "  (" + strings.Join(item.Reasons, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
}
