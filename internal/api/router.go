// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/endless/internal/middleware"
)

// NewRouter builds the chi router for the session API.
//
// Global middleware runs in this order: request id, real IP, panic
// recovery, Prometheus metrics, CORS. The /api/v1 group adds security
// headers, rate limiting and gzip compression.
func NewRouter(h *Handler, mw *ChiMiddleware) chi.Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(mw.RateLimit())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(h.sessionCtx)

				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)

				r.Get("/pair", h.NextPair)
				r.Post("/choices", h.RecordChoice)
				r.Get("/progress", h.Progress)
				r.Get("/history", h.History)

				r.Get("/ranking", h.Ranking)
				r.Get("/summary", h.Summary)
				r.Get("/confidence", h.Confidence)

				r.Get("/rarity", h.GetRarity)
				r.Put("/rarity", h.ConfigureRarity)
				r.Delete("/rarity", h.DisableRarity)

				r.Post("/boost", h.BoostFeature)
				r.Post("/prior", h.ApplyPrior)
				r.Post("/refinement", h.EnterRefinement)
				r.Post("/reset", h.Reset)

				r.Post("/snapshots", h.SaveSnapshot)
				r.Post("/restore", h.RestoreSnapshot)
			})
		})

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", h.ListSnapshots)
			r.Delete("/{key}", h.DeleteSnapshot)
		})
	})

	return r
}
