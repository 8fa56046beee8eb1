// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/endless/internal/api"
	"github.com/tomtom215/endless/internal/catalog"
	"github.com/tomtom215/endless/internal/config"
	"github.com/tomtom215/endless/internal/logging"
	"github.com/tomtom215/endless/internal/metrics"
	"github.com/tomtom215/endless/internal/recommend"
	"github.com/tomtom215/endless/internal/recommend/rarity"
	"github.com/tomtom215/endless/internal/recommend/reranking"
)

// loadConfig reads the configuration and initializes the global logger.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Init(cfg.LoggingOptions())
	return cfg, nil
}

// loadCatalog reads master.json from the configured URL, or from the local
// path when no URL is set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func loadCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) ([]catalog.Record, error) {
	var (
		records []catalog.Record
		err     error
		source  string
	)
	if cfg.Catalog.URL != "" {
		source = cfg.Catalog.URL
		fetcher, ferr := catalog.NewFetcher(cfg.Fetcher(), nil, logger)
		if ferr != nil {
			return nil, fmt.Errorf("create catalog fetcher: %w", ferr)
		}
		records, err = fetcher.Fetch(ctx)
	} else {
		source = cfg.Catalog.Path
		records, err = catalog.LoadFile(cfg.Catalog.Path, cfg.CatalogLoadOptions())
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", source, err)
	}

	metrics.SetCatalogRecords(len(records))
	logger.Info().
		Str("source", source).
		Int("records", len(records)).
		Msg("catalog loaded")
	return records, nil
}

// newEngineFactory returns a factory building loaded engines over records.
// Engines share one rarity cache since they all analyze the same catalog.
// Session seeds are mixed with the configured seed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newEngineFactory(cfg *config.Config, records []catalog.Record, logger zerolog.Logger) api.EngineFactory {
	base := cfg.Engine()
	shared := rarity.NewSharedCache()

	return func(seed int64) (*recommend.Engine, error) {
		ec := base.Clone()
		ec.Seed = base.Seed ^ seed

		engine, err := recommend.NewEngine(ec, logger,
			recommend.WithRarityCache(shared),
			recommend.WithReranker(reranking.NewMMR(ec.Diversity.MMRLambda)),
		)
		if err != nil {
			return nil, fmt.Errorf("create engine: %w", err)
		}
		if err := engine.Load(records); err != nil {
			return nil, fmt.Errorf("load catalog into engine: %w", err)
		}
		return engine, nil
	}
}
