// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package api

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/endless/internal/metrics"
	"github.com/tomtom215/endless/internal/recommend"
	"github.com/tomtom215/endless/internal/recommend/storage"
)

var (
	// ErrSessionNotFound is returned for unknown or evicted session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the registry is at capacity.
	ErrTooManySessions = errors.New("session limit reached")

	// ErrNoStore is returned by snapshot operations without a configured store.
	ErrNoStore = errors.New("snapshot store not configured")
)

// Eviction reasons used in logs and metrics.
const (
	evictIdle     = "idle"
	evictDeleted  = "deleted"
	evictShutdown = "shutdown"
)

// RegistryConfig bounds the session registry.
type RegistryConfig struct {
	// MaxSessions caps concurrently open sessions.
	MaxSessions int

	// IdleTimeout is how long a session may go unused before EvictIdle drops it.
	IdleTimeout time.Duration

	// Autosave writes a snapshot keyed by session id before eviction and on Close.
	Autosave bool
}

// DefaultRegistryConfig returns the registry defaults.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		MaxSessions: 1000,
		IdleTimeout: 30 * time.Minute,
		Autosave:    true,
	}
}

// EngineFactory builds a loaded engine for a new session. seed is derived
// from the session id so each session explores pairs differently.
type EngineFactory func(seed int64) (*recommend.Engine, error)

// Session is one learner's engine plus bookkeeping.
type Session struct {
	ID        string
	Engine    *recommend.Engine
	CreatedAt time.Time

	mu       sync.Mutex
	lastUsed time.Time
}

// LastUsed returns when the session was last looked up.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// SessionInfo describes a session for listing and stats responses.
type SessionInfo struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	LastUsed  time.Time       `json:"last_used"`
	Stats     recommend.Stats `json:"stats"`
}

// Info snapshots the session's bookkeeping and engine counters.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		LastUsed:  s.LastUsed(),
		Stats:     s.Engine.Stats(),
	}
}

// SessionRegistry holds the open learning sessions of a server.
// Each engine guards its own state; the registry lock covers only the map.
type SessionRegistry struct {
	config  RegistryConfig
	factory EngineFactory
	store   storage.Store
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionRegistry creates a registry. store may be nil, in which case
// snapshot operations return ErrNoStore and nothing is autosaved.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSessionRegistry(cfg RegistryConfig, factory EngineFactory, store storage.Store, logger zerolog.Logger) (*SessionRegistry, error) {
	if factory == nil {
		return nil, errors.New("engine factory is required")
	}
	if cfg.MaxSessions < 1 {
		return nil, fmt.Errorf("max sessions must be positive, got %d", cfg.MaxSessions)
	}
	if cfg.IdleTimeout <= 0 {
		return nil, fmt.Errorf("idle timeout must be positive, got %s", cfg.IdleTimeout)
	}

	return &SessionRegistry{
		config:   cfg,
		factory:  factory,
		store:    store,
		logger:   logger.With().Str("component", "sessions").Logger(),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// seedFor derives a per-session seed from the random half of a UUID.
func seedFor(id uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(id[8:])) //nolint:gosec // wraparound is fine for a seed
}

// Create opens a new session. When restoreKey is set the stored snapshot is
// applied before the session becomes visible; a failed restore creates nothing.
func (r *SessionRegistry) Create(ctx context.Context, restoreKey string) (*Session, error) {
	if r.Len() >= r.config.MaxSessions {
		return nil, ErrTooManySessions
	}
	if restoreKey != "" && r.store == nil {
		return nil, ErrNoStore
	}

	id := uuid.New()
	engine, err := r.factory(seedFor(id))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	if restoreKey != "" {
		snap, meta, err := r.store.Load(ctx, restoreKey)
		if err != nil {
			return nil, fmt.Errorf("load snapshot %q: %w", restoreKey, err)
		}
		if err := engine.Restore(snap); err != nil {
			return nil, fmt.Errorf("restore snapshot %q v%d: %w", restoreKey, meta.Version, err)
		}
	}

	now := r.now()
	s := &Session{
		ID:        id.String(),
		Engine:    engine,
		CreatedAt: now,
		lastUsed:  now,
	}

	r.mu.Lock()
	if len(r.sessions) >= r.config.MaxSessions {
		r.mu.Unlock()
		return nil, ErrTooManySessions
	}
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.SetActiveSessions(count)
	r.logger.Info().
		Str("session_id", s.ID).
		Str("restore_key", restoreKey).
		Int("active", count).
		Msg("session created")
	return s, nil
}

// Get returns the session and marks it used.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Delete closes a session without saving it.
func (r *SessionRegistry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	metrics.SetActiveSessions(count)
	metrics.RecordSessionEvicted(evictDeleted)
	r.logger.Info().Str("session_id", id).Msg("session deleted")
	return nil
}

// Len returns the number of open sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns every open session, oldest first.
func (r *SessionRegistry) List() []SessionInfo {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	out := make([]SessionInfo, len(sessions))
	for i, s := range sessions {
		out[i] = s.Info()
	}
	return out
}

// Store returns the snapshot store, or nil.
func (r *SessionRegistry) Store() storage.Store {
	return r.store
}

// Save snapshots a session under key. An empty key uses the session id.
func (r *SessionRegistry) Save(ctx context.Context, id, key string) (storage.Metadata, error) {
	s, err := r.Get(id)
	if err != nil {
		return storage.Metadata{}, err
	}
	if key == "" {
		key = id
	}
	return r.save(ctx, s, key)
}

func (r *SessionRegistry) save(ctx context.Context, s *Session, key string) (storage.Metadata, error) {
	if r.store == nil {
		return storage.Metadata{}, ErrNoStore
	}
	snap, err := s.Engine.Snapshot()
	if err != nil {
		return storage.Metadata{}, fmt.Errorf("snapshot session: %w", err)
	}
	meta, err := r.store.Save(ctx, key, snap)
	if err != nil {
		return storage.Metadata{}, fmt.Errorf("save snapshot %q: %w", key, err)
	}

	r.logger.Debug().
		Str("session_id", s.ID).
		Str("key", key).
		Int("version", meta.Version).
		Msg("session saved")
	return meta, nil
}

// Restore loads the latest snapshot under key into a session. An empty key
// uses the session id.
func (r *SessionRegistry) Restore(ctx context.Context, id, key string) (storage.Metadata, error) {
	s, err := r.Get(id)
	if err != nil {
		return storage.Metadata{}, err
	}
	if r.store == nil {
		return storage.Metadata{}, ErrNoStore
	}
	if key == "" {
		key = id
	}

	snap, meta, err := r.store.Load(ctx, key)
	if err != nil {
		return storage.Metadata{}, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	if err := s.Engine.Restore(snap); err != nil {
		return storage.Metadata{}, fmt.Errorf("restore snapshot %q v%d: %w", key, meta.Version, err)
	}
	return meta, nil
}

// EvictIdle removes sessions unused for longer than the idle timeout,
// autosaving them first when configured. It returns the number evicted.
func (r *SessionRegistry) EvictIdle(ctx context.Context) int {
	cutoff := r.now().Add(-r.config.IdleTimeout)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if len(idle) == 0 {
		return 0
	}

	metrics.SetActiveSessions(count)
	failed := 0
	for _, s := range idle {
		if err := r.autosave(ctx, s); err != nil {
			failed++
		}
		metrics.RecordSessionEvicted(evictIdle)
	}
	r.logger.Info().
		Int("evicted", len(idle)).
		Int("active", count).
		Int("failed_saves", failed).
		Msg("idle sessions evicted")
	return len(idle)
}

// Close drops every session, autosaving each when configured.
func (r *SessionRegistry) Close(ctx context.Context) error {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	metrics.SetActiveSessions(0)
	var errs []error
	for _, s := range sessions {
		if err := r.autosave(ctx, s); err != nil {
			errs = append(errs, err)
		}
		metrics.RecordSessionEvicted(evictShutdown)
	}
	if len(sessions) > 0 {
		r.logger.Info().Int("closed", len(sessions)).Int("failed_saves", len(errs)).Msg("sessions closed")
	}
	return errors.Join(errs...)
}

// autosave saves s under its id when autosave is enabled and a store exists.
// Failures are logged and returned; eviction proceeds either way.
func (r *SessionRegistry) autosave(ctx context.Context, s *Session) error {
	if !r.config.Autosave || r.store == nil || !s.Engine.Loaded() {
		return nil
	}
	if _, err := r.save(ctx, s, s.ID); err != nil {
		r.logger.Warn().Err(err).Str("session_id", s.ID).Msg("autosave failed")
		return err
	}
	return nil
}
