// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

var (
	// ErrEmptyCatalog is returned when a source decodes to zero records.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrInvalidRecord is returned for records that cannot be learned from.
	ErrInvalidRecord = errors.New("invalid catalog record")
)

// LoadOptions control how decoded records are filtered.
type LoadOptions struct {
	// RequireTags drops records without any positive tag weight.
	RequireTags bool

	// AllowEmpty accepts a catalog with zero records.
	AllowEmpty bool
}

// DefaultLoadOptions mirrors the master.json export, which only ships games
// that carry tags.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{RequireTags: true}
}

// LoadFile reads a master.json file from disk.
func LoadFile(path string, opts LoadOptions) ([]Record, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := Decode(f, opts)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return records, nil
}

// Decode parses a master.json array from r, validates each record and
// returns the normalized catalog (sorted by id, duplicates removed).
func Decode(r io.Reader, opts LoadOptions) ([]Record, error) {
	var raw []Record
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	filtered := make([]Record, 0, len(raw))
	for i := range raw {
		if err := validateRecord(&raw[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if opts.RequireTags && !raw[i].HasTags() {
			continue
		}
		filtered = append(filtered, raw[i])
	}

	if len(filtered) == 0 && !opts.AllowEmpty {
		return nil, ErrEmptyCatalog
	}
	return Normalize(filtered), nil
}

// Encode writes records as a master.json array.
func Encode(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

func validateRecord(r *Record) error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: appId must be positive, got %d", ErrInvalidRecord, r.ID)
	}
	for tag, votes := range r.Tags {
		if tag == "" {
			return fmt.Errorf("%w: app %d has an empty tag name", ErrInvalidRecord, r.ID)
		}
		if votes < 0 {
			return fmt.Errorf("%w: app %d tag %q has negative votes", ErrInvalidRecord, r.ID, tag)
		}
	}
	return nil
}
