// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package storage

import (
	"bytes"
	"cmp"
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
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/Hybbon/ps/internal/evaluation/statistics"
)

// SnapshotMetadata describes a stored distance matrix.
type SnapshotMetadata struct {
	Fold        string    `json:"fold"`
	Fingerprint string    `json:"fingerprint"`
	Items       int       `json:"items"`
	SavedAt     time.Time `json:"saved_at"`

	// Checksum is the SHA-256 checksum of the uncompressed data.
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
}

// storedFile is the on-disk format for snapshot files.
type storedFile struct {
	Metadata       SnapshotMetadata
	CompressedData []byte
}

var snapshotFilePattern = regexp.MustCompile(`^distance_u(\w+?)_([0-9a-f]+)\.gob\.gz$`)

// Store manages distance matrix snapshots in one directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

var _ statistics.SnapshotStore = (*Store)(nil)

// NewStore creates a store at baseDir, creating the directory if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// Save stores m for fold under fingerprint, replacing any previous snapshot
// with the same key. The file is written to a temporary name and renamed.
func (s *Store) Save(ctx context.Context, fold, fingerprint string, m *statistics.DistanceMatrix) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	sf := storedFile{
		Metadata: SnapshotMetadata{
			Fold:        fold,
			Fingerprint: fingerprint,
			Items:       m.Len(),
			SavedAt:     time.Now(),
			Checksum:    hex.EncodeToString(hash[:]),
			SizeBytes:   int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, s.snapshotPath(fold, fingerprint)); err != nil {
		return fmt.Errorf("rename snapshot file: %w", err)
	}
	return nil
}

// Load returns the snapshot for fold and fingerprint.
// A missing snapshot returns an error matching statistics.ErrSnapshotNotFound.
func (s *Store) Load(ctx context.Context, fold, fingerprint string) (*statistics.DistanceMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sf, err := readStoredFile(s.snapshotPath(fold, fingerprint))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("fold %s, fingerprint %s: %w", fold, fingerprint, statistics.ErrSnapshotNotFound)
		}
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	checksum := hex.EncodeToString(hash[:])
	if checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	m := &statistics.DistanceMatrix{}
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(m); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return m, nil
}

func readStoredFile(path string) (*storedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from the store directory and snapshot key
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return &sf, nil
}

// List returns the metadata of every readable snapshot, newest first.
func (s *Store) List(ctx context.Context) ([]SnapshotMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var snapshots []SnapshotMetadata
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !snapshotFilePattern.MatchString(entry.Name()) {
			continue
		}
		sf, err := readStoredFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		snapshots = append(snapshots, sf.Metadata)
	}

	slices.SortFunc(snapshots, func(a, b SnapshotMetadata) int {
		return b.SavedAt.Compare(a.SavedAt)
	})
	return snapshots, nil
}

// Prune removes old snapshots of fold, keeping the keep most recently written.
func (s *Store) Prune(fold string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	type candidate struct {
		name    string
		modTime time.Time
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := snapshotFilePattern.FindStringSubmatch(entry.Name())
		if match == nil || match[1] != fold {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{name: entry.Name(), modTime: info.ModTime()})
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		return cmp.Or(b.modTime.Compare(a.modTime), cmp.Compare(a.name, b.name))
	})

	for _, c := range candidates[min(keep, len(candidates)):] {
		if err := os.Remove(filepath.Join(s.baseDir, c.name)); err != nil {
			return fmt.Errorf("delete snapshot: %w", err)
		}
	}
	return nil
}

// snapshotPath returns the file path for a snapshot.
func (s *Store) snapshotPath(fold, fingerprint string) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("distance_u%s_%s.gob.gz", fold, fingerprint))
}
