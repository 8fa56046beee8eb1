// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/tomtom215/endless/internal/recommend/preference"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot exists for a key.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrChecksumMismatch is returned when stored data fails verification.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// ErrInvalidKey is returned for keys that cannot be stored safely.
	ErrInvalidKey = errors.New("invalid snapshot key")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateKey checks that key is usable as a file name and a badger key.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Metadata describes a stored snapshot.
type Metadata struct {
	// Key identifies the snapshot, usually a session id.
	Key string `json:"key"`

	// Version increases by one on every save of the same key.
	Version int `json:"version"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// Features is the dictionary size of the snapshot.
	Features int `json:"features"`

	// Decisions and Comparisons are the snapshot's counters.
	Decisions   int `json:"decisions"`
	Comparisons int `json:"comparisons"`

	// Checksum is the SHA-256 of the encoded snapshot (FileStore only).
	Checksum string `json:"checksum,omitempty"`

	// SizeBytes is the stored size of the snapshot.
	SizeBytes int64 `json:"size_bytes"`
}

// Store persists snapshots by key.
type Store interface {
	// Save writes snap as the next version of key.
	Save(ctx context.Context, key string, snap preference.Snapshot) (Metadata, error)

	// Load returns the latest version of key, or ErrSnapshotNotFound.
	Load(ctx context.Context, key string) (preference.Snapshot, Metadata, error)

	// Delete removes every version of key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// List returns the latest metadata of every key, sorted by key.
	List(ctx context.Context) ([]Metadata, error)

	// Close releases backend resources.
	Close() error
}

// Backend names a storage implementation.
type Backend string

const (
	// BackendFile stores versioned gob files in a directory.
	BackendFile Backend = "file"

	// BackendBadger stores snapshots in BadgerDB.
	BackendBadger Backend = "badger"

	// BackendMemory uses an in-memory BadgerDB. Nothing survives a restart.
	BackendMemory Backend = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend Backend `json:"backend"`

	// Path is the file store directory or the badger directory.
	Path string `json:"path"`

	// Retain is the number of versions FileStore keeps per key.
	Retain int `json:"retain"`
}

// Open creates the configured store wrapped with metrics.
//
//nolint:gocritic // config is consumed by value
func Open(cfg Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case BackendFile, "":
		store, err = NewFileStore(cfg.Path, cfg.Retain)
	case BackendBadger:
		store, err = OpenBadgerStore(cfg.Path, false)
	case BackendMemory:
		store, err = OpenBadgerStore("", true)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	backend := cfg.Backend
	if backend == "" {
		backend = BackendFile
	}
	return Instrument(store, string(backend)), nil
}

//nolint:gocritic // snapshot is read-only
func metadataFor(key string, version int, snap preference.Snapshot, savedAt time.Time) Metadata {
	return Metadata{
		Key:         key,
		Version:     version,
		SavedAt:     savedAt,
		Features:    len(snap.Features),
		Decisions:   snap.ActualDecisions,
		Comparisons: snap.TotalComparisons,
	}
}
