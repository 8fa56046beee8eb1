// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package selection

import (
	"fmt"
	"strings"
)

// Outcome is the user's answer to a shown pair.
type Outcome int

const (
	// OutcomeFirst means the first record was preferred.
	OutcomeFirst Outcome = iota
	// OutcomeSecond means the second record was preferred.
	OutcomeSecond
	// OutcomeBothLiked means both records were liked.
	OutcomeBothLiked
	// OutcomeBothDisliked means both records were disliked.
	OutcomeBothDisliked
	// OutcomeSkip means no answer; only the comparison counter moves.
	OutcomeSkip
)

// String returns the wire name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFirst:
		return "first"
	case OutcomeSecond:
		return "second"
	case OutcomeBothLiked:
		return "both_liked"
	case OutcomeBothDisliked:
		return "both_disliked"
	case OutcomeSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	return o >= OutcomeFirst && o <= OutcomeSkip
}

// ParseOutcome parses a wire name (case-insensitive).
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "left", "a":
		return OutcomeFirst, nil
	case "second", "right", "b":
		return OutcomeSecond, nil
	case "both_liked", "both-liked", "like_both":
		return OutcomeBothLiked, nil
	case "both_disliked", "both-disliked", "dislike_both":
		return OutcomeBothDisliked, nil
	case "skip":
		return OutcomeSkip, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// Phase names the strategy that produced a pair.
type Phase int

const (
	// PhaseBootstrap picks uniformly random unused pairs.
	PhaseBootstrap Phase = iota
	// PhaseGuided picks the most uncertain sampled pair from the top slice.
	PhaseGuided
	// PhaseFallback is a random pick after guided search found nothing useful.
	PhaseFallback
	// PhaseRefinement is exhaustive search with pair reuse.
	PhaseRefinement
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBootstrap:
		return "bootstrap"
	case PhaseGuided:
		return "guided"
	case PhaseFallback:
		return "fallback"
	case PhaseRefinement:
		return "refinement"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by wire name.
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutcome, int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText accepts any name ParseOutcome accepts.
func (o *Outcome) UnmarshalText(text []byte) error {
	v, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{PhaseBootstrap, PhaseGuided, PhaseFallback, PhaseRefinement} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
