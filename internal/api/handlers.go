// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/endless/internal/logging"
	"github.com/tomtom215/endless/internal/recommend"
	"github.com/tomtom215/endless/internal/recommend/preference"
	"github.com/tomtom215/endless/internal/recommend/rarity"
	"github.com/tomtom215/endless/internal/recommend/reranking"
	"github.com/tomtom215/endless/internal/recommend/selection"
	"github.com/tomtom215/endless/internal/recommend/storage"
)

type sessionKey struct{}

// Handler serves the session API.
type Handler struct {
	registry    *SessionRegistry
	calibration reranking.CalibrationConfig
	version     string
	startTime   time.Time
}

// NewHandler creates a handler over registry. version is reported by /health.
func NewHandler(registry *SessionRegistry, version string) *Handler {
	return &Handler{
		registry:    registry,
		calibration: reranking.DefaultCalibrationConfig(),
		version:     version,
		startTime:   time.Now(),
	}
}

// sessionCtx resolves {sessionID} and tags the request context with it.
func (h *Handler) sessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := h.registry.Get(chi.URLParam(r, "sessionID"))
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		ctx := logging.ContextWithSessionID(r.Context(), s.ID)
		ctx = context.WithValue(ctx, sessionKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *Session {
	s, _ := r.Context().Value(sessionKey{}).(*Session)
	return s
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Sessions      int     `json:"sessions"`
	Store         bool    `json:"store"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health reports liveness and registry size.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       h.version,
		Sessions:      h.registry.Len(),
		Store:         h.registry.Store() != nil,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// ListSessions returns every open session.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.registry.List())
}

// CreateSession opens a session, restoring a stored snapshot when asked.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSONBody(r, &req, true); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	s, err := h.registry.Create(r.Context(), req.RestoreKey)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+s.ID)
	respondJSON(w, r, http.StatusCreated, s.Info())
}

// GetSession returns the session's counters.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, sessionFrom(r).Info())
}

// DeleteSession closes the session without saving it.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(sessionFrom(r).ID); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PairResponse is the next pair, or Available false when the session has none.
type PairResponse struct {
	Available bool                `json:"available"`
	Pair      *recommend.PairView `json:"pair,omitempty"`
	Progress  selection.Progress  `json:"progress"`
}

// NextPair selects the next pair to show.
func (h *Handler) NextPair(w http.ResponseWriter, r *http.Request) {
	engine := sessionFrom(r).Engine
	view, ok, err := engine.NextPair()
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if !ok {
		respondJSON(w, r, http.StatusOK, PairResponse{Progress: engine.Progress()})
		return
	}
	respondJSON(w, r, http.StatusOK, PairResponse{
		Available: true,
		Pair:      &view,
		Progress:  view.Progress,
	})
}

// ChoiceResponse reports the session state after a choice.
type ChoiceResponse struct {
	Outcome    selection.Outcome  `json:"outcome"`
	Progress   selection.Progress `json:"progress"`
	Confidence float64            `json:"confidence"`
}

// RecordChoice applies an answer to a shown pair.
func (h *Handler) RecordChoice(w http.ResponseWriter, r *http.Request) {
	var req ChoiceRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}
	outcome, err := selection.ParseOutcome(req.Outcome)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	engine := sessionFrom(r).Engine
	pair := selection.Pair{First: req.FirstID, Second: req.SecondID}
	if err := engine.RecordChoice(pair, outcome); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, ChoiceResponse{
		Outcome:    outcome,
		Progress:   engine.Progress(),
		Confidence: engine.Confidence().Total,
	})
}

// Progress reports comparisons made against the target.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, sessionFrom(r).Engine.Progress())
}

// RankingResponse is a ranked slice of the catalog.
type RankingResponse struct {
	Mode  string                   `json:"mode"`
	K     int                      `json:"k"`
	Items []recommend.ScoredRecord `json:"items"`
}

// Ranking returns the top k records. mode selects plain score order, MMR
// diversity, or calibration towards the liked-tag mix.
func (h *Handler) Ranking(w http.ResponseWriter, r *http.Request) {
	req := RankingRequest{
		K:    getIntParam(r, "k", 0),
		Mode: getStringParam(r, "mode", "plain"),
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	engine := sessionFrom(r).Engine
	var (
		items []recommend.ScoredRecord
		err   error
	)
	switch req.Mode {
	case "diverse":
		items, err = engine.RankDiverse(r.Context(), req.K)
	case "calibrated":
		items, err = h.rankCalibrated(r.Context(), engine, req.K)
	default:
		items, err = engine.RankWith(r.Context(), nil, req.K)
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, RankingResponse{
		Mode:  req.Mode,
		K:     engine.Config().ClampK(req.K),
		Items: items,
	})
}

func (h *Handler) rankCalibrated(ctx context.Context, engine *recommend.Engine, k int) ([]recommend.ScoredRecord, error) {
	summary, err := engine.Summary()
	if err != nil {
		return nil, err
	}
	cal := reranking.NewCalibration(h.calibration)
	cal.SetTarget(reranking.TargetFromSummary(summary))
	return engine.RankWith(ctx, cal, k)
}

// Summary reports the learned likes and dislikes. ?top limits each side.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := sessionFrom(r).Engine.Summary()
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if top := getIntParam(r, "top", 0); top > 0 {
		summary = summary.Top(top)
	}
	respondJSON(w, r, http.StatusOK, summary)
}

// Confidence returns the confidence breakdown.
func (h *Handler) Confidence(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, sessionFrom(r).Engine.Confidence())
}

// History returns recorded comparisons, oldest first. ?limit keeps the latest n.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	req := HistoryRequest{Limit: getIntParam(r, "limit", 0)}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	history := sessionFrom(r).Engine.History()
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[len(history)-req.Limit:]
	}
	if history == nil {
		history = []selection.Comparison{}
	}
	respondJSON(w, r, http.StatusOK, history)
}

// RarityResponse describes rarity weighting for a session.
type RarityResponse struct {
	Enabled  bool             `json:"enabled"`
	Analysis *rarity.Analysis `json:"analysis,omitempty"`
}

// GetRarity returns whether rarity is on and the catalog frequency table.
func (h *Handler) GetRarity(w http.ResponseWriter, r *http.Request) {
	engine := sessionFrom(r).Engine
	respondJSON(w, r, http.StatusOK, RarityResponse{
		Enabled:  engine.Stats().RarityEnabled,
		Analysis: engine.RarityAnalysis(),
	})
}

// ConfigureRarity sets the multiplier bounds and enables rarity weighting.
func (h *Handler) ConfigureRarity(w http.ResponseWriter, r *http.Request) {
	var req RarityRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	engine := sessionFrom(r).Engine
	smoothing := engine.Config().Rarity.Smoothing
	if req.Smoothing != nil {
		smoothing = *req.Smoothing
	}
	if err := engine.ConfigureRarity(req.MinMultiplier, req.MaxMultiplier, smoothing); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), err)
		return
	}
	respondJSON(w, r, http.StatusOK, RarityResponse{Enabled: true})
}

// DisableRarity turns rarity weighting off.
func (h *Handler) DisableRarity(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).Engine.DisableRarity()
	respondJSON(w, r, http.StatusOK, RarityResponse{Enabled: false})
}

// BoostFeature nudges one tag's weight.
func (h *Handler) BoostFeature(w http.ResponseWriter, r *http.Request) {
	var req BoostRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	dir := preference.Like
	if req.Direction == "dislike" {
		dir = preference.Dislike
	}
	engine := sessionFrom(r).Engine
	if err := engine.BoostFeature(req.Tag, dir); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, engine.Stats())
}

// ApplyPrior blends per-tag prior weights into the model.
func (h *Handler) ApplyPrior(w http.ResponseWriter, r *http.Request) {
	var req PriorRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	engine := sessionFrom(r).Engine
	if err := engine.ApplyPrior(req.Weights); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, engine.Stats())
}

// EnterRefinement lets the session continue past its target.
func (h *Handler) EnterRefinement(w http.ResponseWriter, r *http.Request) {
	engine := sessionFrom(r).Engine
	if err := engine.EnterRefinement(); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, engine.Progress())
}

// Reset clears the learned state but keeps the catalog.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	engine := sessionFrom(r).Engine
	if err := engine.Reset(); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, engine.Stats())
}

// SaveSnapshot writes the session's learned state to the store.
func (h *Handler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := decodeJSONBody(r, &req, true); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	meta, err := h.registry.Save(r.Context(), sessionFrom(r).ID, req.Key)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, meta)
}

// RestoreSnapshot replaces the session's learned state from the store.
func (h *Handler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := decodeJSONBody(r, &req, true); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validateRequest(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	meta, err := h.registry.Restore(r.Context(), sessionFrom(r).ID, req.Key)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, meta)
}

// ListSnapshots returns the latest metadata of every stored key.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	store := h.registry.Store()
	if store == nil {
		respondDomainError(w, r, ErrNoStore)
		return
	}
	list, err := store.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []storage.Metadata{}
	}
	respondJSON(w, r, http.StatusOK, list)
}

// DeleteSnapshot removes every version of a stored key.
func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	store := h.registry.Store()
	if store == nil {
		respondDomainError(w, r, ErrNoStore)
		return
	}
	key := chi.URLParam(r, "key")
	if err := storage.ValidateKey(key); err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := store.Delete(r.Context(), key); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
