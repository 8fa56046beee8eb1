// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/endless/internal/catalog"
	"github.com/tomtom215/endless/internal/logging"
	"github.com/tomtom215/endless/internal/recommend"
	"github.com/tomtom215/endless/internal/recommend/storage"
)

// Config is the application configuration.
//
// Loading order (koanf v2):
//  1. Built-in defaults
//  2. Optional YAML file (ENDLESS_CONFIG or one of DefaultConfigPaths)
//  3. ENDLESS_* environment variables
//
// Config is read-only after Load and safe for concurrent reads.
type Config struct {
	Catalog   CatalogConfig   `koanf:"catalog"`
	Learner   LearnerConfig   `koanf:"learner"`
	Rarity    RarityConfig    `koanf:"rarity"`
	Selector  SelectorConfig  `koanf:"selector"`
	Diversity DiversityConfig `koanf:"diversity"`
	Storage   StorageConfig   `koanf:"storage"`
	Server    ServerConfig    `koanf:"server"`
	Sessions  SessionsConfig  `koanf:"sessions"`
	Logging   LoggingConfig   `koanf:"logging"`

	// Seed drives pair selection. Sessions derive their own seed from it.
	Seed int64 `koanf:"seed"`
}

// CatalogConfig locates master.json. URL takes precedence over Path.
type CatalogConfig struct {
	Path         string        `koanf:"path"`
	URL          string        `koanf:"url" validate:"omitempty,url"`
	FetchTimeout time.Duration `koanf:"fetch_timeout" validate:"gt=0"`
	RequireTags  bool          `koanf:"require_tags"`
}

// LearnerConfig holds preference model hyperparameters.
type LearnerConfig struct {
	LearningRate       float64 `koanf:"learning_rate" validate:"gt=0,lte=10"`
	BothFactor         float64 `koanf:"both_factor" validate:"gte=0"`
	ReferenceMagnitude float64 `koanf:"reference_magnitude" validate:"gt=0"`
	PriorVotes         float64 `koanf:"prior_votes" validate:"gte=0"`
	BoostStrength      float64 `koanf:"boost_strength" validate:"gt=0"`
	ConfidenceWindow   int     `koanf:"confidence_window" validate:"min=1"`
	SummaryThreshold   float64 `koanf:"summary_threshold" validate:"gte=0"`
	NormalizeFeatures  bool    `koanf:"normalize_features"`
}

// RarityConfig controls the rare-tag importance multiplier.
type RarityConfig struct {
	Enabled       bool    `koanf:"enabled"`
	MinMultiplier float64 `koanf:"min_multiplier" validate:"gt=0"`
	MaxMultiplier float64 `koanf:"max_multiplier" validate:"gtefield=MinMultiplier"`
	Smoothing     bool    `koanf:"smoothing"`
}

// SelectorConfig holds pair selection parameters.
type SelectorConfig struct {
	TargetComparisons    int     `koanf:"target_comparisons" validate:"min=1"`
	BootstrapDecisions   int     `koanf:"bootstrap_decisions" validate:"min=0"`
	MinUncertainty       float64 `koanf:"min_uncertainty" validate:"gte=0,lte=1"`
	SimilarityThreshold  float64 `koanf:"similarity_threshold" validate:"percentile"`
	RefinementPercentile float64 `koanf:"refinement_percentile" validate:"percentile"`
	RecencyWindow        int     `koanf:"recency_window" validate:"min=0"`
	MaxRandomAttempts    int     `koanf:"max_random_attempts" validate:"min=1"`
	ExhaustivePairLimit  int     `koanf:"exhaustive_pair_limit" validate:"min=0"`
}

// DiversityConfig controls ranking size and MMR reranking.
type DiversityConfig struct {
	MMRLambda float64 `koanf:"mmr_lambda" validate:"gte=0,lte=1"`
	DefaultK  int     `koanf:"default_k" validate:"min=1"`
	MaxK      int     `koanf:"max_k" validate:"gtefield=DefaultK"`
}

// StorageConfig selects the snapshot store.
type StorageConfig struct {
	Backend string `koanf:"backend" validate:"oneof=file badger memory"`
	Path    string `koanf:"path"`
	Retain  int    `koanf:"retain" validate:"min=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// SessionsConfig bounds the in-memory session registry.
type SessionsConfig struct {
	MaxSessions     int           `koanf:"max_sessions" validate:"min=1"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	JanitorInterval time.Duration `koanf:"janitor_interval" validate:"gt=0"`

	// Autosave writes a snapshot to the store before an idle session is evicted.
	Autosave bool `koanf:"autosave"`
}

// LoggingConfig mirrors logging.Config for file and env loading.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	learner := engine.Learner
	sel := engine.Selection

	return &Config{
		Catalog: CatalogConfig{
			Path:         "master.json",
			FetchTimeout: 30 * time.Second,
			RequireTags:  true,
		},
		Learner: LearnerConfig{
			LearningRate:       learner.LearningRate,
			BothFactor:         learner.BothFactor,
			ReferenceMagnitude: learner.ReferenceMagnitude,
			PriorVotes:         learner.PriorVotes,
			BoostStrength:      learner.BoostStrength,
			ConfidenceWindow:   learner.ConfidenceWindow,
			SummaryThreshold:   learner.SummaryThreshold,
			NormalizeFeatures:  engine.NormalizeFeatures,
		},
		Rarity: RarityConfig{
			Enabled:       engine.Rarity.Enabled,
			MinMultiplier: engine.Rarity.MinMultiplier,
			MaxMultiplier: engine.Rarity.MaxMultiplier,
			Smoothing:     engine.Rarity.Smoothing,
		},
		Selector: SelectorConfig{
			TargetComparisons:    sel.TargetComparisons,
			BootstrapDecisions:   sel.BootstrapDecisions,
			MinUncertainty:       sel.MinUncertainty,
			SimilarityThreshold:  sel.SimilarityThreshold,
			RefinementPercentile: sel.RefinementPercentile,
			RecencyWindow:        sel.RecencyWindow,
			MaxRandomAttempts:    sel.MaxRandomAttempts,
			ExhaustivePairLimit:  sel.ExhaustivePairLimit,
		},
		Diversity: DiversityConfig{
			MMRLambda: engine.Diversity.MMRLambda,
			DefaultK:  engine.Diversity.DefaultK,
			MaxK:      engine.Diversity.MaxK,
		},
		Storage: StorageConfig{
			Backend: string(storage.BackendFile),
			Path:    "data/snapshots",
			Retain:  storage.DefaultRetain,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Sessions: SessionsConfig{
			MaxSessions:     1000,
			IdleTimeout:     30 * time.Minute,
			JanitorInterval: time.Minute,
			Autosave:        true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Seed: engine.Seed,
	}
}

// Engine converts the learner sections into an engine configuration.
func (c *Config) Engine() *recommend.Config {
	cfg := recommend.DefaultConfig()

	cfg.Learner.LearningRate = c.Learner.LearningRate
	cfg.Learner.BothFactor = c.Learner.BothFactor
	cfg.Learner.ReferenceMagnitude = c.Learner.ReferenceMagnitude
	cfg.Learner.PriorVotes = c.Learner.PriorVotes
	cfg.Learner.BoostStrength = c.Learner.BoostStrength
	cfg.Learner.ConfidenceWindow = c.Learner.ConfidenceWindow
	cfg.Learner.SummaryThreshold = c.Learner.SummaryThreshold
	cfg.NormalizeFeatures = c.Learner.NormalizeFeatures

	cfg.Rarity = recommend.RarityConfig{
		Enabled:       c.Rarity.Enabled,
		MinMultiplier: c.Rarity.MinMultiplier,
		MaxMultiplier: c.Rarity.MaxMultiplier,
		Smoothing:     c.Rarity.Smoothing,
	}

	cfg.Selection.TargetComparisons = c.Selector.TargetComparisons
	cfg.Selection.BootstrapDecisions = c.Selector.BootstrapDecisions
	cfg.Selection.MinUncertainty = c.Selector.MinUncertainty
	cfg.Selection.SimilarityThreshold = c.Selector.SimilarityThreshold
	cfg.Selection.RefinementPercentile = c.Selector.RefinementPercentile
	cfg.Selection.RecencyWindow = c.Selector.RecencyWindow
	cfg.Selection.MaxRandomAttempts = c.Selector.MaxRandomAttempts
	cfg.Selection.ExhaustivePairLimit = c.Selector.ExhaustivePairLimit

	cfg.Diversity = recommend.DiversityConfig{
		MMRLambda: c.Diversity.MMRLambda,
		DefaultK:  c.Diversity.DefaultK,
		MaxK:      c.Diversity.MaxK,
	}
	cfg.Seed = c.Seed
	return cfg
}

// Store returns the snapshot store configuration.
func (c *Config) Store() storage.Config {
	return storage.Config{
		Backend: storage.Backend(c.Storage.Backend),
		Path:    c.Storage.Path,
		Retain:  c.Storage.Retain,
	}
}

// LoggingOptions returns the logger configuration.
func (c *Config) LoggingOptions() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// CatalogLoadOptions returns the record filter used when decoding master.json.
func (c *Config) CatalogLoadOptions() catalog.LoadOptions {
	return catalog.LoadOptions{RequireTags: c.Catalog.RequireTags}
}

// Fetcher returns the remote catalog configuration. Callers check URL first.
func (c *Config) Fetcher() catalog.FetcherConfig {
	return catalog.FetcherConfig{
		URL:     c.Catalog.URL,
		Timeout: c.Catalog.FetchTimeout,
		Breaker: catalog.DefaultBreakerConfig(),
		Options: c.CatalogLoadOptions(),
	}
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
