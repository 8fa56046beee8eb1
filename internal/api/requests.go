// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/endless/internal/validation"
)

// maxBodyBytes bounds request bodies. Priors are the largest legitimate payload.
const maxBodyBytes = 1 << 20

// CreateSessionRequest opens a session, optionally from a stored snapshot.
type CreateSessionRequest struct {
	RestoreKey string `json:"restore_key,omitempty" validate:"omitempty,max=128"`
}

// ChoiceRequest answers a shown pair.
type ChoiceRequest struct {
	FirstID  int    `json:"first_id" validate:"gt=0"`
	SecondID int    `json:"second_id" validate:"gt=0"`
	Outcome  string `json:"outcome" validate:"required,oneof=first second both_liked both_disliked skip left right a b"`
}

// SnapshotRequest names the key for save and restore. Empty uses the session id.
type SnapshotRequest struct {
	Key string `json:"key,omitempty" validate:"omitempty,max=128"`
}

// RarityRequest sets the importance multiplier bounds and enables rarity.
type RarityRequest struct {
	MinMultiplier float64 `json:"min_multiplier" validate:"gt=0"`
	MaxMultiplier float64 `json:"max_multiplier" validate:"gtfield=MinMultiplier"`
	Smoothing     *bool   `json:"smoothing,omitempty"`
}

// BoostRequest nudges one tag up or down.
type BoostRequest struct {
	Tag       string `json:"tag" validate:"required,tagname"`
	Direction string `json:"direction" validate:"required,oneof=like dislike"`
}

// PriorRequest blends external per-tag weights into the model.
type PriorRequest struct {
	Weights map[string]float64 `json:"weights" validate:"required,min=1,max=4096"`
}

// RankingRequest holds the ranking query parameters.
type RankingRequest struct {
	K    int    `json:"k" validate:"min=0"`
	Mode string `json:"mode" validate:"oneof=plain diverse calibrated"`
}

// HistoryRequest holds the history query parameters.
type HistoryRequest struct {
	Limit int `json:"limit" validate:"min=0,max=10000"`
}

// decodeJSONBody decodes a bounded JSON body into dst. An empty body leaves
// dst unchanged when allowEmpty is set.
func decodeJSONBody(r *http.Request, dst interface{}, allowEmpty bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	if len(body) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// validateRequest runs the shared validator over v.
func validateRequest(v interface{}) *validation.RequestValidationError {
	return validation.ValidateStruct(v)
}

// getIntParam extracts an integer query parameter with a default value.
// Malformed values fall back to the default.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getStringParam extracts a string query parameter with a default value.
func getStringParam(r *http.Request, key, defaultValue string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return defaultValue
}
