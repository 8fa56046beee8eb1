// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package catalog loads the game catalog that the preference learner ranks.
//
// A catalog is a slice of Record values decoded from the master.json export
// (an array of camelCase game objects whose "tags" field maps community tag
// names to vote counts). Records are immutable once loaded: the learner only
// reads the ID, Name and Tags fields, the remaining fields are carried for
// display by the HTTP API.
//
// # Sources
//
//   - LoadFile / Decode: local master.json files or any io.Reader
//   - Fetcher: remote master.json over HTTP, guarded by a circuit breaker
//
// # Fingerprints
//
// Fingerprint summarizes a catalog by record count and boundary ids. It is
// the cache key for per-catalog analysis such as tag rarity, so two loads of
// the same export share cached results.
package catalog
