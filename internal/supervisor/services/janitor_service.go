// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionEvictor drops idle sessions and reports how many it removed.
// *api.SessionRegistry satisfies it.
type SessionEvictor interface {
	EvictIdle(ctx context.Context) int
}

// DefaultJanitorInterval is used when the configured interval is not positive.
const DefaultJanitorInterval = time.Minute

// SessionJanitorService sweeps idle sessions on a fixed interval.
type SessionJanitorService struct {
	evictor  SessionEvictor
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewSessionJanitorService creates a janitor that calls evictor.EvictIdle
// every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSessionJanitorService(evictor SessionEvictor, interval time.Duration, logger zerolog.Logger) *SessionJanitorService {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	return &SessionJanitorService{
		evictor:  evictor,
		interval: interval,
		logger:   logger.With().Str("service", "session-janitor").Logger(),
		name:     "session-janitor",
	}
}

// Serve implements suture.Service.
func (s *SessionJanitorService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("session janitor starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session janitor shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionJanitorService) sweep(ctx context.Context) {
	start := time.Now()
	evicted := s.evictor.EvictIdle(ctx)
	if evicted == 0 {
		return
	}
	s.logger.Info().
		Int("evicted", evicted).
		Dur("duration", time.Since(start)).
		Msg("evicted idle sessions")
}

// String implements fmt.Stringer.
func (s *SessionJanitorService) String() string {
	return s.name
}
