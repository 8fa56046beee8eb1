// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package middleware holds the HTTP middleware shared by the Endless API:
// request id propagation into the logging context and Prometheus request
// metrics labeled by chi route pattern.
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestID)
//	r.Use(middleware.PrometheusMetrics)
//
// CORS, rate limiting, compression and panic recovery come from go-chi and
// are wired in the api package.
package middleware
