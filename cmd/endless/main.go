// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Command endless learns a player's game taste from pairwise comparisons.
//
// Subcommands:
//
//	endless serve   HTTP session API under a supervisor tree
//	endless play    interactive comparisons in the terminal
//	endless rank    rank the catalog from a saved snapshot
//
// # Configuration
//
// Settings are layered with koanf v2 (highest priority wins):
//   - ENDLESS_* environment variables (ENDLESS_HTTP_PORT, ENDLESS_CATALOG_PATH, ...)
//   - the YAML file named by --config or ENDLESS_CONFIG
//   - built-in defaults
//
// # Signal Handling
//
// serve shuts down on SIGINT and SIGTERM: the HTTP server drains in-flight
// requests, then every live session is autosaved to the snapshot store.
//
// # Example Usage
//
//	export ENDLESS_CATALOG_PATH=./master.json
//	export ENDLESS_STORAGE_BACKEND=badger
//	endless serve
//
//	endless play --save me --top 15
//	endless rank --snapshot me --mode diverse -k 10
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "endless",
	Short:         "endless - pairwise game preference learning",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default: ENDLESS_CONFIG or ./config.yaml)")
	rootCmd.AddCommand(newServeCmd(), newPlayCmd(), newRankCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
