// Endless - Pairwise Game Preference Learning
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/endless

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/endless/internal/recommend/preference"
)

const (
	fileSuffix = ".gob.gz"

	// DefaultRetain is the number of versions kept per key.
	DefaultRetain = 5
)

// FileStore keeps versioned snapshot files in a directory.
type FileStore struct {
	baseDir string
	retain  int
	now     func() time.Time

	mu sync.RWMutex
	// versions tracks the latest version per key.
	versions map[string]int
}

// storedFile is the on-disk format for snapshot files.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// NewFileStore creates a store at baseDir, creating it if needed, and scans
// it for existing snapshots. Retain < 1 uses DefaultRetain.
func NewFileStore(baseDir string, retain int) (*FileStore, error) {
	if baseDir == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	if retain < 1 {
		retain = DefaultRetain
	}

	s := &FileStore{
		baseDir:  baseDir,
		retain:   retain,
		now:      time.Now,
		versions: make(map[string]int),
	}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing snapshots: %w", err)
	}
	return s, nil
}

// scan records the latest version of every key found on disk.
func (s *FileStore) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, version := parseSnapshotFilename(entry.Name())
		if key == "" {
			continue
		}
		if current, ok := s.versions[key]; !ok || version > current {
			s.versions[key] = version
		}
	}
	return nil
}

// parseSnapshotFilename splits "{key}_v{version}.gob.gz".
func parseSnapshotFilename(name string) (key string, version int) {
	base, ok := strings.CutSuffix(name, fileSuffix)
	if !ok {
		return "", 0
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version < 1 {
		return "", 0
	}
	return base[:idx], version
}

// Save writes snap as the next version of key and prunes old versions.
//
//nolint:gocritic // snapshot is consumed by value
func (s *FileStore) Save(ctx context.Context, key string, snap preference.Snapshot) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	if err := ValidateKey(key); err != nil {
		return Metadata{}, err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return Metadata{}, fmt.Errorf("encode snapshot: %w", err)
	}
	rawData := buf.Bytes()
	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return Metadata{}, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.versions[key] + 1
	meta := metadataFor(key, version, snap, s.now())
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.SizeBytes = int64(compressed.Len())

	if err := s.writeFile(s.snapshotPath(key, version), storedFile{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}); err != nil {
		return Metadata{}, err
	}
	s.versions[key] = version

	if err := s.pruneLocked(key); err != nil {
		return meta, err
	}
	return meta, nil
}

// writeFile writes sf to a temp file and renames it into place.
func (s *FileStore) writeFile(path string, sf storedFile) error {
	tmp, err := os.CreateTemp(s.baseDir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error already being returned
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename snapshot file: %w", err)
	}
	return nil
}

// Load returns the latest version of key.
func (s *FileStore) Load(ctx context.Context, key string) (preference.Snapshot, Metadata, error) {
	return s.LoadVersion(ctx, key, 0)
}

// LoadVersion loads a specific version. Version 0 loads the latest.
func (s *FileStore) LoadVersion(ctx context.Context, key string, version int) (preference.Snapshot, Metadata, error) {
	if err := ctx.Err(); err != nil {
		return preference.Snapshot{}, Metadata{}, err
	}
	if err := ValidateKey(key); err != nil {
		return preference.Snapshot{}, Metadata{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[key]
		if !ok {
			return preference.Snapshot{}, Metadata{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
		}
	}

	sf, err := readStoredFile(s.snapshotPath(key, version))
	if errors.Is(err, fs.ErrNotExist) {
		return preference.Snapshot{}, Metadata{}, fmt.Errorf("%w: %s v%d", ErrSnapshotNotFound, key, version)
	}
	if err != nil {
		return preference.Snapshot{}, Metadata{}, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return preference.Snapshot{}, Metadata{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return preference.Snapshot{}, Metadata{}, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return preference.Snapshot{}, Metadata{}, fmt.Errorf("%w: expected %s, got %s",
			ErrChecksumMismatch, sf.Metadata.Checksum, checksum)
	}

	var snap preference.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&snap); err != nil {
		return preference.Snapshot{}, Metadata{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, sf.Metadata, nil
}

func readStoredFile(path string) (storedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from a validated key
	if err != nil {
		return storedFile{}, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return storedFile{}, fmt.Errorf("read snapshot file: %w", err)
	}
	return sf, nil
}

// Versions returns the stored versions of key, newest first.
func (s *FileStore) Versions(key string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versionsLocked(key)
}

func (s *FileStore) versionsLocked(key string) ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if k, v := parseSnapshotFilename(entry.Name()); k == key {
			versions = append(versions, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// pruneLocked removes all but the newest retain versions of key.
func (s *FileStore) pruneLocked(key string) error {
	versions, err := s.versionsLocked(key)
	if err != nil {
		return err
	}
	for i := s.retain; i < len(versions); i++ {
		_ = os.Remove(s.snapshotPath(key, versions[i])) //nolint:errcheck // best-effort cleanup of old versions
	}
	return nil
}

// Delete removes every version of key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.versionsLocked(key)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if err := os.Remove(s.snapshotPath(key, v)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete snapshot: %w", err)
		}
	}
	delete(s.versions, key)
	return nil
}

// List returns the latest metadata of every key, sorted by key.
func (s *FileStore) List(ctx context.Context) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Metadata, 0, len(s.versions))
	for key, version := range s.versions {
		sf, err := readStoredFile(s.snapshotPath(key, version))
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) snapshotPath(key string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", key, version, fileSuffix))
}

var _ Store = (*FileStore)(nil)
