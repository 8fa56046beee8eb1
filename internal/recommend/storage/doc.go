// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package storage persists preference snapshots.
//
// A snapshot is the learner state of one session: weights, decision
// counters and the ordered feature names the weights are indexed by. Each
// snapshot is saved under a caller-chosen key (usually the session id) and
// every save bumps that key's version.
//
// # Backends
//
// FileStore writes one file per version, named {key}_v{version}.gob.gz. The
// snapshot is gob-encoded, checksummed with SHA-256 and gzip-compressed; the
// checksum is verified on load. Only the newest Retain versions are kept.
//
// BadgerStore keeps the latest version of each key in BadgerDB under
// "snapshot:{key}", JSON-encoded.
//
// # Thread Safety
//
// Both backends are safe for concurrent use.
package storage
