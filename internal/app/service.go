// Package service provides the pipeline service that orchestrates a full
// collect, analyze, report, publish run and implements the dependencies
// required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	fetchqueue "github.com/moatwatch/moatwatch/internal/adapters/mq/queue"
	workerpool "github.com/moatwatch/moatwatch/internal/adapters/mq/worker"
	"github.com/moatwatch/moatwatch/internal/adapters/repository"
	"github.com/moatwatch/moatwatch/internal/domain/model"
	"github.com/moatwatch/moatwatch/internal/domain/types"
	"github.com/moatwatch/moatwatch/pkg/logger"
	"github.com/moatwatch/moatwatch/pkg/metrics"
)

// Run trigger labels.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// Step names used in logs and metrics.
const (
	stepPrepare = "prepare"
	stepCollect = "collect"
	stepAnalyze = "analyze"
	stepReport  = "report"
	stepPublish = "publish"
)

// Universe yields the symbols to collect.
type Universe interface {
	Symbols(ctx context.Context) ([]string, error)
}

// Ranker scores a snapshot and returns the ranked picks.
type Ranker interface {
	Rank(ctx context.Context, snap model.Snapshot) ([]types.Entry, error)
}

// Reporter renders the ranked picks into the output directory.
type Reporter interface {
	Generate(ctx context.Context, entries []types.Entry, asOf time.Time) error
}

// SitePublisher pushes artifacts to the hosting repository.
type SitePublisher interface {
	PublishSite(ctx context.Context, asOf time.Time) error
	CommitData(ctx context.Context, asOf time.Time) error
}

// Service runs the pipeline and serves its state to the HTTP API.
type Service struct {
	mu sync.Mutex

	// Core components
	store     repository.Store
	universe  Universe
	fetcher   workerpool.Fetcher
	deriver   workerpool.Deriver
	ranker    Ranker
	reporter  Reporter
	publisher SitePublisher // nil when publishing is disabled

	// Configuration
	workerCount    int
	queueSize      int
	batchSize      int
	batchPause     time.Duration
	collectTimeout time.Duration

	// State
	running   bool
	lastRun   *model.RunSummary
	lastPicks []types.Entry

	// Logging
	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(store repository.Store, universe Universe, fetcher workerpool.Fetcher, deriver workerpool.Deriver, ranker Ranker, reporter Reporter, opts ...Option) *Service {
	s := &Service{
		store:          store,
		universe:       universe,
		fetcher:        fetcher,
		deriver:        deriver,
		ranker:         ranker,
		reporter:       reporter,
		workerCount:    8,
		queueSize:      10_000,
		batchSize:      100,
		batchPause:     90 * time.Second,
		collectTimeout: 2 * time.Hour,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("pipeline")
	}

	return s
}

// Run executes one full pipeline run. Any step failure aborts the run and
// the remaining steps do not execute. A second Run while one is in flight
// returns ErrRunInProgress.
func (s *Service) Run(ctx context.Context, trigger string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	started := time.Now()
	sum := model.RunSummary{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: started,
	}

	s.logger.Info(ctx, "run started",
		logger.String("run_id", sum.RunID),
		logger.String("trigger", trigger),
	)

	err := s.run(ctx, &sum)

	sum.FinishedAt = time.Now()
	if err != nil {
		sum.Status = "failure"
		sum.Error = err.Error()
		metrics.RecordRun("failure")
		s.logger.Error(ctx, "run failed",
			logger.String("run_id", sum.RunID),
			logger.Error(err),
		)
	} else {
		sum.Status = "success"
		metrics.RecordRun("success")
		s.logger.Info(ctx, "run finished",
			logger.String("run_id", sum.RunID),
			logger.Duration("elapsed", sum.FinishedAt.Sub(started)),
			logger.Int("picks", sum.Picks),
		)
	}
	metrics.RecordRunDuration(sum.FinishedAt.Sub(started).Seconds())
	metrics.RecordLastRun(float64(sum.FinishedAt.Unix()))

	s.mu.Lock()
	s.lastRun = &sum
	s.mu.Unlock()

	if saveErr := s.store.SaveSummary(ctx, sum); saveErr != nil {
		s.logger.Warn(ctx, "failed to save run summary", logger.Error(saveErr))
	}

	return err
}

// run executes the pipeline steps, filling in the summary as it goes.
func (s *Service) run(ctx context.Context, sum *model.RunSummary) error {
	if err := s.stepped(ctx, stepPrepare, func(ctx context.Context) error {
		return s.prepare(ctx)
	}); err != nil {
		return err
	}

	var snap model.Snapshot
	if err := s.stepped(ctx, stepCollect, func(ctx context.Context) error {
		var err error
		snap, err = s.collect(ctx, sum)
		return err
	}); err != nil {
		return err
	}

	if _, err := s.store.SaveSnapshot(ctx, snap, sum.StartedAt); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	var picks []types.Entry
	if err := s.stepped(ctx, stepAnalyze, func(ctx context.Context) error {
		var err error
		picks, err = s.ranker.Rank(ctx, snap)
		if err != nil {
			metrics.RecordScoringError()
		}
		return err
	}); err != nil {
		return err
	}
	sum.Picks = len(picks)
	metrics.UpdatePicksCount(len(picks))

	if err := s.stepped(ctx, stepReport, func(ctx context.Context) error {
		return s.reporter.Generate(ctx, picks, sum.StartedAt)
	}); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastPicks = picks
	s.mu.Unlock()

	if s.publisher != nil {
		if err := s.stepped(ctx, stepPublish, func(ctx context.Context) error {
			if err := s.publisher.PublishSite(ctx, sum.StartedAt); err != nil {
				return err
			}
			return s.publisher.CommitData(ctx, sum.StartedAt)
		}); err != nil {
			return err
		}
		sum.Published = true
	}

	return nil
}

// stepped runs one step with duration metrics and step-level logging.
func (s *Service) stepped(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	metrics.RecordStepDuration(name, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("step %s: %w", name, err)
	}
	s.logger.Debug(ctx, "step finished",
		logger.String("step", name),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// prepare ensures the working directories exist and wipes stale output.
func (s *Service) prepare(ctx context.Context) error {
	if err := s.store.EnsureDirs(ctx); err != nil {
		return err
	}
	return s.store.WipeOutput(ctx)
}

// collect discovers the universe and fetches fundamentals for every symbol
// within the collection budget. Exceeding the budget fails the run.
func (s *Service) collect(ctx context.Context, sum *model.RunSummary) (model.Snapshot, error) {
	cctx, cancel := context.WithTimeout(ctx, s.collectTimeout)
	defer cancel()

	symbols, err := s.universe.Symbols(cctx)
	if err != nil {
		return nil, fmt.Errorf("discover universe: %w", err)
	}
	sum.SymbolsDiscovered = len(symbols)
	metrics.UpdateSymbolsDiscovered(len(symbols))

	capacity := s.queueSize
	if len(symbols) > capacity {
		capacity = len(symbols)
	}
	q := fetchqueue.NewInMemoryQueue(fetchqueue.WithCapacity(capacity))
	collector := newSnapshotCollector()
	pool := workerpool.NewPool(s.workerCount, q, s.fetcher, s.deriver, collector)
	pool.Start(cctx)

	// Enqueue in batches with a pause between them to stay polite toward
	// the upstream quote API.
	enqueueErr := s.enqueueBatches(cctx, q, symbols)
	_ = q.Close()

	waitErr := pool.Wait(cctx)

	snap, collected, skipped, failed := collector.result()
	sum.SymbolsCollected = collected
	sum.SymbolsSkipped = skipped
	sum.FetchErrors = failed

	if enqueueErr != nil || waitErr != nil {
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrCollectTimeout, s.collectTimeout)
		}
		err := enqueueErr
		if err == nil {
			err = waitErr
		}
		return nil, fmt.Errorf("collection interrupted: %w", err)
	}

	s.logger.Info(ctx, "collection finished",
		logger.Int("discovered", len(symbols)),
		logger.Int("collected", collected),
		logger.Int("skipped", skipped),
		logger.Int("fetch_errors", failed),
	)
	return snap, nil
}

// enqueueBatches feeds symbols to the queue, pausing between batches.
func (s *Service) enqueueBatches(ctx context.Context, q fetchqueue.Queue, symbols []string) error {
	for i, sym := range symbols {
		if i > 0 && s.batchSize > 0 && i%s.batchSize == 0 {
			select {
			case <-time.After(s.batchPause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if !q.Enqueue(ctx, fetchqueue.Job{Symbol: sym}) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn(ctx, "enqueue dropped symbol", logger.String("symbol", sym))
		}
	}
	return nil
}

// LastRun returns the most recent run summary. It falls back to the stored
// summary when the process restarted since the last run.
func (s *Service) LastRun(ctx context.Context) (model.RunSummary, error) {
	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()

	if last != nil {
		return *last, nil
	}
	return s.store.LoadSummary(ctx)
}

// Picks returns the most recent ranked picks. After a restart they are
// recomputed from the latest stored snapshot.
func (s *Service) Picks(ctx context.Context) ([]types.Entry, error) {
	s.mu.Lock()
	picks := s.lastPicks
	s.mu.Unlock()

	if picks != nil {
		return picks, nil
	}

	snap, err := s.store.LoadLatest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []types.Entry{}, nil
		}
		return nil, err
	}
	return s.ranker.Rank(ctx, snap)
}

// Running reports whether a run is currently in flight.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"running":         s.running,
		"worker_count":    s.workerCount,
		"queue_size":      s.queueSize,
		"batch_size":      s.batchSize,
		"collect_timeout": s.collectTimeout.String(),
	}
	if s.lastRun != nil {
		stats["last_run_id"] = s.lastRun.RunID
		stats["last_run_status"] = s.lastRun.Status
		stats["last_run_finished_at"] = s.lastRun.FinishedAt
		stats["picks"] = s.lastRun.Picks
	}
	return stats
}
