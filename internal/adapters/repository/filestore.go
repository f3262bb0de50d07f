package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/moatwatch/moatwatch/internal/domain/model"
)

// Artifact file names inside the data directory.
const (
	latestFile  = "latest.json"
	summaryFile = "summary.json"

	snapshotPrefix = "stock_data_"
	snapshotSuffix = ".json"

	dirPerm  = 0o755
	filePerm = 0o644
)

// FileStore persists snapshots and summaries as JSON files on disk.
// Safe for concurrent use.
type FileStore struct {
	mu        sync.Mutex
	dataDir   string
	outputDir string
	indent    string
}

// NewFileStore creates a store rooted at the given directories.
func NewFileStore(dataDir, outputDir string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		dataDir:   dataDir,
		outputDir: outputDir,
		indent:    "  ",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureDirs creates the data and output directories if missing.
func (s *FileStore) EnsureDirs(_ context.Context) error {
	for _, dir := range []string{s.dataDir, s.outputDir} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("%w: mkdir %s: %w", ErrIO, dir, err)
		}
	}
	return nil
}

// WipeOutput removes the output directory and recreates it empty, so stale
// report files never survive into the next run.
func (s *FileStore) WipeOutput(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.outputDir); err != nil {
		return fmt.Errorf("%w: remove %s: %w", ErrIO, s.outputDir, err)
	}
	if err := os.MkdirAll(s.outputDir, dirPerm); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", ErrIO, s.outputDir, err)
	}
	return nil
}

// SaveSnapshot writes the dated snapshot file and the latest pointer.
func (s *FileStore) SaveSnapshot(_ context.Context, snap model.Snapshot, asOf time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(snap, "", s.indent)
	if err != nil {
		return "", fmt.Errorf("%w: snapshot: %w", ErrEncode, err)
	}

	dated := filepath.Join(s.dataDir, snapshotPrefix+asOf.Format("2006-01-02")+snapshotSuffix)
	if err := writeFileAtomic(dated, raw); err != nil {
		return "", err
	}
	if err := writeFileAtomic(filepath.Join(s.dataDir, latestFile), raw); err != nil {
		return "", err
	}
	return dated, nil
}

// LoadLatest reads the most recent snapshot.
func (s *FileStore) LoadLatest(_ context.Context) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(filepath.Join(s.dataDir, latestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no snapshot saved yet", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, latestFile, err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: snapshot: %w", ErrDecode, err)
	}
	return snap, nil
}

// SaveSummary writes the run summary next to the snapshots.
func (s *FileStore) SaveSummary(_ context.Context, sum model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(sum, "", s.indent)
	if err != nil {
		return fmt.Errorf("%w: summary: %w", ErrEncode, err)
	}
	return writeFileAtomic(filepath.Join(s.dataDir, summaryFile), raw)
}

// LoadSummary reads the last run summary.
func (s *FileStore) LoadSummary(_ context.Context) (model.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum model.RunSummary
	raw, err := os.ReadFile(filepath.Join(s.dataDir, summaryFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sum, fmt.Errorf("%w: no run recorded yet", ErrNotFound)
		}
		return sum, fmt.Errorf("%w: read %s: %w", ErrIO, summaryFile, err)
	}
	if err := json.Unmarshal(raw, &sum); err != nil {
		return sum, fmt.Errorf("%w: summary: %w", ErrDecode, err)
	}
	return sum, nil
}

// DataDir returns the directory holding snapshots.
func (s *FileStore) DataDir() string { return s.dataDir }

// OutputDir returns the directory holding the generated site.
func (s *FileStore) OutputDir() string { return s.outputDir }

// writeFileAtomic writes via a temp file and rename so readers never observe
// a partially written artifact.
func writeFileAtomic(path string, raw []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, filePerm); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %s: %w", ErrIO, path, err)
	}
	return nil
}
