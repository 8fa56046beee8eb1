// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

// Package validation wraps go-playground/validator v10 with a shared
// instance, Endless-specific tags and API-friendly error conversion.
//
// It validates both the koanf-loaded application config and HTTP request
// bodies:
//
//	type boostRequest struct {
//	    Tag       string `json:"tag" validate:"required,tagname"`
//	    Direction string `json:"direction" validate:"required,oneof=up down"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, verr)
//	    return
//	}
//
// Error field names follow the json tag so messages match the request body.
package validation
