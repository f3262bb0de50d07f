// Package repository defines the snapshot store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/moatwatch/moatwatch/internal/domain/model"
)

// Store provides read/write access to pipeline artifacts on disk.
type Store interface {
	// EnsureDirs creates the data and output directories if missing.
	EnsureDirs(ctx context.Context) error

	// WipeOutput removes the output directory and recreates it empty.
	WipeOutput(ctx context.Context) error

	// SaveSnapshot writes the dated snapshot file and the latest pointer.
	// Returns the path of the dated file.
	SaveSnapshot(ctx context.Context, snap model.Snapshot, asOf time.Time) (string, error)

	// LoadLatest reads the most recent snapshot.
	// Returns ErrNotFound if no snapshot has been saved yet.
	LoadLatest(ctx context.Context) (model.Snapshot, error)

	// SaveSummary writes the run summary next to the snapshots.
	SaveSummary(ctx context.Context, sum model.RunSummary) error

	// LoadSummary reads the last run summary.
	// Returns ErrNotFound if no run has completed yet.
	LoadSummary(ctx context.Context) (model.RunSummary, error)

	// DataDir returns the directory holding snapshots.
	DataDir() string

	// OutputDir returns the directory holding the generated site.
	OutputDir() string
}
