// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

/*
Package config loads Endless application configuration with koanf v2.

Layers, lowest precedence first:

 1. Struct defaults, taken from recommend.DefaultConfig for learner settings
 2. A YAML file named by ENDLESS_CONFIG, or the first of DefaultConfigPaths
 3. ENDLESS_* environment variables, mapped explicitly to config keys

Example file:

	catalog:
	  path: ./master.json
	learner:
	  learning_rate: 0.1
	rarity:
	  enabled: true
	  max_multiplier: 2.5
	storage:
	  backend: badger
	  path: /var/lib/endless
	server:
	  port: 8080
	  cors_origins: ["https://example.com"]

Equivalent environment overrides:

	ENDLESS_CATALOG_PATH=./master.json
	ENDLESS_RARITY_MAX_MULTIPLIER=2.5
	ENDLESS_STORAGE_BACKEND=badger
	ENDLESS_CORS_ORIGINS=https://a.example,https://b.example

Validation runs go-playground/validator tags through internal/validation,
then cross-section checks, then the engine's own Validate. Engine, Store,
LoggingOptions and Fetcher translate sections into the types the other
packages take.
*/
package config
