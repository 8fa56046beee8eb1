// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/endless/internal/recommend/preference"
)

// snapshotKeyPrefix namespaces snapshot entries in BadgerDB.
const snapshotKeyPrefix = "snapshot:"

// badgerEntry is the JSON value stored per key. The snapshot stays raw so
// List can read metadata without decoding weights.
type badgerEntry struct {
	Metadata Metadata        `json:"metadata"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// BadgerStore keeps the latest snapshot of each key in BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	now    func() time.Time
}

// NewBadgerStore wraps an open database. Close does not close db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, now: time.Now}
}

// OpenBadgerStore opens a database at path, or in memory, and owns it.
func OpenBadgerStore(path string, inMemory bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else if path == "" {
		return nil, errors.New("badger path is required")
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for snapshots: %w", err)
	}
	s := NewBadgerStore(db)
	s.ownsDB = true
	return s, nil
}

// Save writes snap as the next version of key.
//
//nolint:gocritic // snapshot is consumed by value
func (s *BadgerStore) Save(ctx context.Context, key string, snap preference.Snapshot) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	if err := ValidateKey(key); err != nil {
		return Metadata{}, err
	}

	var meta Metadata
	err := s.db.Update(func(txn *badger.Txn) error {
		version := 1
		prev, err := getEntry(txn, key)
		switch {
		case err == nil:
			version = prev.Metadata.Version + 1
		case !errors.Is(err, ErrSnapshotNotFound):
			return err
		}

		snapData, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		meta = metadataFor(key, version, snap, s.now())
		meta.SizeBytes = int64(len(snapData))

		data, err := json.Marshal(badgerEntry{Metadata: meta, Snapshot: snapData})
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		if err := txn.Set([]byte(snapshotKeyPrefix+key), data); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// Load returns the latest snapshot of key.
func (s *BadgerStore) Load(ctx context.Context, key string) (preference.Snapshot, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return preference.Snapshot{}, Metadata{}, err
	}
	if err := ValidateKey(key); err != nil {
		return preference.Snapshot{}, Metadata{}, err
	}

	var entry badgerEntry
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		entry, err = getEntry(txn, key)
		return err
	})
	if err != nil {
		return preference.Snapshot{}, Metadata{}, err
	}

	var snap preference.Snapshot
	if err := json.Unmarshal(entry.Snapshot, &snap); err != nil {
		return preference.Snapshot{}, Metadata{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, entry.Metadata, nil
}

func getEntry(txn *badger.Txn, key string) (badgerEntry, error) {
	var entry badgerEntry
	item, err := txn.Get([]byte(snapshotKeyPrefix + key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return entry, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
	}
	if err != nil {
		return entry, fmt.Errorf("get snapshot: %w", err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	})
	if err != nil {
		return entry, fmt.Errorf("unmarshal entry: %w", err)
	}
	return entry, nil
}

// Delete removes key.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(snapshotKeyPrefix + key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete snapshot: %w", err)
		}
		return nil
	})
}

// List returns the metadata of every key, sorted by key.
func (s *BadgerStore) List(ctx context.Context) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(snapshotKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var entry badgerEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					return fmt.Errorf("unmarshal %s: %w", strings.TrimPrefix(string(item.Key()), snapshotKeyPrefix), err)
				}
				out = append(out, entry.Metadata)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

var _ Store = (*BadgerStore)(nil)
