// Package worker defines the fetch worker pool that drains the job queue,
// fetches fundamentals, derives metrics, and records results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/moatwatch/moatwatch/internal/adapters/mq/queue"
	"github.com/moatwatch/moatwatch/internal/domain/model"
	"github.com/moatwatch/moatwatch/internal/domain/valuation"
	"github.com/moatwatch/moatwatch/pkg/logger"
	"github.com/moatwatch/moatwatch/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 8
	poolShutdownTimeout = 30 * time.Second
)

// Fetcher retrieves raw company facts for a symbol.
type Fetcher interface {
	Fundamentals(ctx context.Context, symbol string) (*model.Facts, error)
}

// Deriver turns raw facts into derived fundamentals.
type Deriver interface {
	Derive(facts *model.Facts, now time.Time) (model.Fundamentals, error)
}

// Recorder receives per-symbol outcomes from the workers.
type Recorder interface {
	// Record stores a successfully derived result.
	Record(ctx context.Context, symbol string, f model.Fundamentals)

	// Skip notes a symbol dropped for lack of data.
	Skip(ctx context.Context, symbol string, reason error)

	// Fail notes a symbol whose fetch errored.
	Fail(ctx context.Context, symbol string, err error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// FetchWorker processes jobs until its queue closes or the context ends.
type FetchWorker struct {
	queue    Queue
	fetcher  Fetcher
	deriver  Deriver
	recorder Recorder
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewFetchWorker creates a worker with configuration options.
func NewFetchWorker(q Queue, fetcher Fetcher, deriver Deriver, recorder Recorder, opts ...Option) *FetchWorker {
	w := &FetchWorker{
		queue:    q,
		fetcher:  fetcher,
		deriver:  deriver,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *FetchWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return // queue closed and drained
			}
			w.processJob(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *FetchWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob handles a single symbol.
func (w *FetchWorker) processJob(ctx context.Context, job queue.Job) {
	start := time.Now()
	facts, err := w.fetcher.Fundamentals(ctx, job.Symbol)
	metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		metrics.RecordFetchError()
		metrics.RecordErrorByComponent("worker", "fetch_error")
		w.logger.Warn(ctx, "fetch failed",
			logger.String("symbol", job.Symbol),
			logger.Error(err),
		)
		w.recorder.Fail(ctx, job.Symbol, err)
		return
	}

	derived, err := w.deriver.Derive(facts, time.Now())
	if err != nil {
		if errors.Is(err, valuation.ErrInsufficientData) || errors.Is(err, valuation.ErrMissingStatements) {
			metrics.RecordSymbolSkipped()
			w.logger.Debug(ctx, "symbol skipped",
				logger.String("symbol", job.Symbol),
				logger.Error(err),
			)
			w.recorder.Skip(ctx, job.Symbol, err)
			return
		}
		metrics.RecordErrorByComponent("worker", "derive_error")
		w.logger.Error(ctx, "derivation failed",
			logger.String("symbol", job.Symbol),
			logger.Error(err),
		)
		w.recorder.Fail(ctx, job.Symbol, err)
		return
	}

	metrics.RecordSymbolCollected()
	w.recorder.Record(ctx, job.Symbol, derived)
}

// Pool manages multiple fetch workers.
type Pool struct {
	workers []*FetchWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a worker pool of the given size.
func NewPool(workerCount int, q Queue, fetcher Fetcher, deriver Deriver, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*FetchWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewFetchWorker(q, fetcher, deriver, recorder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has finished, which happens once the queue
// is closed and drained or the context ends.
func (p *Pool) Wait(ctx context.Context) error {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return fmt.Errorf("pool wait interrupted: %w", ctx.Err())
		}
	}
	return nil
}

// Shutdown gracefully shuts down the entire pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
