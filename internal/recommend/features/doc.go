// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package features turns catalog tags into sparse numeric vectors.
//
// A Dictionary assigns every tag that appears in the catalog a dense ordinal
// in sorted name order, so two builds over the same catalog agree on every
// ordinal. Encode maps a record's tag weights onto those ordinals, dropping
// unknown tags and non-positive weights. Encoder adds optional per-feature
// max normalization and a per-record cache that lives as long as the
// dictionary it was built from.
package features
