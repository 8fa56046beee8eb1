// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/endless/internal/metrics"
	"github.com/tomtom215/endless/internal/recommend/preference"
)

// instrumentedStore records Prometheus metrics for every operation.
type instrumentedStore struct {
	next    Store
	backend string
}

// Instrument wraps store so each operation is counted and timed under backend.
func Instrument(store Store, backend string) Store {
	return &instrumentedStore{next: store, backend: backend}
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	metrics.RecordSnapshotOperation(s.backend, op, status, time.Since(start))
}

//nolint:gocritic // snapshot is consumed by value
func (s *instrumentedStore) Save(ctx context.Context, key string, snap preference.Snapshot) (Metadata, error) {
	start := time.Now()
	meta, err := s.next.Save(ctx, key, snap)
	s.observe("save", start, err)
	return meta, err
}

func (s *instrumentedStore) Load(ctx context.Context, key string) (preference.Snapshot, Metadata, error) {
	start := time.Now()
	snap, meta, err := s.next.Load(ctx, key)
	s.observe("load", start, err)
	return snap, meta, err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.observe("delete", start, err)
	return err
}

func (s *instrumentedStore) List(ctx context.Context) ([]Metadata, error) {
	start := time.Now()
	out, err := s.next.List(ctx)
	s.observe("list", start, err)
	return out, err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
