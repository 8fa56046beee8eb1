// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package services adapts server components to suture.Service.
//
//   - HTTPServerService: runs an *http.Server and shuts it down gracefully
//     when the supervisor stops it.
//   - SessionJanitorService: periodically evicts idle sessions from the
//     session registry.
//
// Every service implements fmt.Stringer so suture can name it in logs.
package services
