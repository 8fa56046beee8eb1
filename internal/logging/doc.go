// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package logging provides the process-wide zerolog logger for Endless.
//
// JSON output is the default; console output is available for interactive
// use such as the play command.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Msg("server starting")
//
//	logger := logging.WithComponent("sessions")
//	logger.Debug().Str("session_id", id).Msg("created")
//
// # Request Context
//
// HTTP middleware stores a request ID and, for session routes, the session
// ID in the request context. Ctx adds both as fields:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("choice rejected")
//
// # slog Bridge
//
// NewSlogLogger adapts a zerolog.Logger to *slog.Logger so that sutureslog
// supervisor events share the same output.
//
// Always finish an event with Msg or Send; an unfinished event is dropped.
package logging
