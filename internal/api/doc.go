// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

/*
Package api serves learning sessions over HTTP.

Each session owns a recommend.Engine loaded with the shared catalog. The
SessionRegistry caps the number of open sessions, evicts idle ones and,
when configured, saves their snapshots to a storage.Store before they go.

# Routes

	GET    /health
	GET    /metrics
	GET    /api/v1/sessions
	POST   /api/v1/sessions                      {"restore_key": "..."}
	GET    /api/v1/sessions/{id}
	DELETE /api/v1/sessions/{id}
	GET    /api/v1/sessions/{id}/pair
	POST   /api/v1/sessions/{id}/choices         {"first_id", "second_id", "outcome"}
	GET    /api/v1/sessions/{id}/progress
	GET    /api/v1/sessions/{id}/history?limit=
	GET    /api/v1/sessions/{id}/ranking?k=&mode=plain|diverse|calibrated
	GET    /api/v1/sessions/{id}/summary?top=
	GET    /api/v1/sessions/{id}/confidence
	GET    /api/v1/sessions/{id}/rarity
	PUT    /api/v1/sessions/{id}/rarity          {"min_multiplier", "max_multiplier", "smoothing"}
	DELETE /api/v1/sessions/{id}/rarity
	POST   /api/v1/sessions/{id}/boost           {"tag", "direction": "like|dislike"}
	POST   /api/v1/sessions/{id}/prior           {"weights": {"tag": w}}
	POST   /api/v1/sessions/{id}/refinement
	POST   /api/v1/sessions/{id}/reset
	POST   /api/v1/sessions/{id}/snapshots       {"key": "..."}
	POST   /api/v1/sessions/{id}/restore         {"key": "..."}
	GET    /api/v1/snapshots
	DELETE /api/v1/snapshots/{key}

# Responses

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

Domain errors map to statuses in errorStatus: unknown sessions and snapshots
are 404, malformed pairs, outcomes and tags are 400, a reached target or a
snapshot from another catalog is 409, a full registry or missing store is 503.
*/
package api
