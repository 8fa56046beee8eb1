// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when ENDLESS_CONFIG is unset.
var DefaultConfigPaths = []string{
	"endless.yaml",
	"endless.yml",
	"/etc/endless/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "ENDLESS_CONFIG"

// EnvPrefix is stripped from environment variable names before mapping.
const EnvPrefix = "ENDLESS_"

// Load builds the configuration from defaults, an optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file layer.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"catalog_path":          "catalog.path",
	"catalog_url":           "catalog.url",
	"catalog_fetch_timeout": "catalog.fetch_timeout",
	"catalog_require_tags":  "catalog.require_tags",

	"learning_rate":       "learner.learning_rate",
	"both_factor":         "learner.both_factor",
	"reference_magnitude": "learner.reference_magnitude",
	"prior_votes":         "learner.prior_votes",
	"boost_strength":      "learner.boost_strength",
	"confidence_window":   "learner.confidence_window",
	"summary_threshold":   "learner.summary_threshold",
	"normalize_features":  "learner.normalize_features",

	"rarity_enabled":        "rarity.enabled",
	"rarity_min_multiplier": "rarity.min_multiplier",
	"rarity_max_multiplier": "rarity.max_multiplier",
	"rarity_smoothing":      "rarity.smoothing",

	"target_comparisons":    "selector.target_comparisons",
	"bootstrap_decisions":   "selector.bootstrap_decisions",
	"min_uncertainty":       "selector.min_uncertainty",
	"similarity_threshold":  "selector.similarity_threshold",
	"refinement_percentile": "selector.refinement_percentile",
	"recency_window":        "selector.recency_window",
	"max_random_attempts":   "selector.max_random_attempts",
	"exhaustive_pair_limit": "selector.exhaustive_pair_limit",

	"mmr_lambda": "diversity.mmr_lambda",
	"default_k":  "diversity.default_k",
	"max_k":      "diversity.max_k",

	"storage_backend": "storage.backend",
	"storage_path":    "storage.path",
	"storage_retain":  "storage.retain",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	"max_sessions":             "sessions.max_sessions",
	"session_idle_timeout":     "sessions.idle_timeout",
	"session_janitor_interval": "sessions.janitor_interval",
	"session_autosave":         "sessions.autosave",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"seed": "seed",
}

// envTransformFunc maps ENDLESS_* variables to config keys. Unknown
// variables return "" and are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}
