// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/endless/internal/logging"
	"github.com/tomtom215/endless/internal/recommend"
	"github.com/tomtom215/endless/internal/recommend/preference"
	"github.com/tomtom215/endless/internal/recommend/selection"
	"github.com/tomtom215/endless/internal/recommend/storage"
	"github.com/tomtom215/endless/internal/validation"
)

// APIResponse is the envelope for every API response.
type APIResponse struct {
	// Success indicates whether the request was successful
	Success bool `json:"success"`

	// Data contains the response payload (omitted on error)
	Data interface{} `json:"data,omitempty"`

	// Error contains error details (omitted on success)
	Error *APIError `json:"error,omitempty"`

	Meta *APIMeta `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains additional error details (optional)
	Details interface{} `json:"details,omitempty"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManySessions    = "TOO_MANY_SESSIONS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed   = "VALIDATION_ERROR"
	ErrCodeSnapshotMismatch   = "SNAPSHOT_MISMATCH"
	ErrCodeSnapshotCorrupt    = "SNAPSHOT_CORRUPT"
)

// sanitizeLogValue escapes control characters so request data cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newMeta(r *http.Request) *APIMeta {
	ctx := r.Context()
	return &APIMeta{
		RequestID: logging.RequestIDFromContext(ctx),
		SessionID: logging.SessionIDFromContext(ctx),
		Timestamp: time.Now().UTC(),
	}
}

// respondJSON writes data in a success envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, status, &APIResponse{
		Success: true,
		Data:    data,
		Meta:    newMeta(r),
	})
}

// respondError writes an error envelope and logs err when it is not nil.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	meta := newMeta(r)
	if err != nil {
		logger := logging.Ctx(r.Context())
		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("code", code).
			Int("status", status).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("api error")
	}

	writeJSON(w, status, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: meta.RequestID,
		},
		Meta: meta,
	})
}

// respondValidationError renders failures from validation.ValidateStruct.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	meta := newMeta(r)
	writeJSON(w, http.StatusBadRequest, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:      apiErr.Code,
			Message:   apiErr.Message,
			Details:   apiErr.Details,
			RequestID: meta.RequestID,
		},
		Meta: meta,
	})
}

func writeJSON(w http.ResponseWriter, status int, resp *APIResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// errorStatus maps domain errors to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, storage.ErrSnapshotNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable, ErrCodeTooManySessions
	case errors.Is(err, ErrNoStore), errors.Is(err, recommend.ErrNoCatalog):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	case errors.Is(err, selection.ErrTargetReached):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, preference.ErrSnapshotMismatch):
		return http.StatusConflict, ErrCodeSnapshotMismatch
	case errors.Is(err, storage.ErrChecksumMismatch):
		return http.StatusUnprocessableEntity, ErrCodeSnapshotCorrupt
	case errors.Is(err, selection.ErrUnknownRecord),
		errors.Is(err, selection.ErrInvalidPair),
		errors.Is(err, selection.ErrInvalidOutcome),
		errors.Is(err, preference.ErrUnknownFeature),
		errors.Is(err, preference.ErrInvalidDirection),
		errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest, ErrCodeBadRequest
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// respondDomainError renders err with the status errorStatus picks for it.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "An internal error occurred"
	}
	respondError(w, r, status, code, message, err)
}
