// Package universe discovers the stock symbol universe from exchange
// listings. Individual sources may fail without failing discovery; only
// when every source comes back empty does the merger fall back to a
// built-in list of major symbols.
package universe

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/moatwatch/moatwatch/internal/domain/dedupe"
	"github.com/moatwatch/moatwatch/pkg/logger"
)

// Source lists symbols from one exchange or listing page.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Symbols returns exchange-suffixed symbols (e.g. "TCS.NS", "500325.BO").
	Symbols(ctx context.Context) ([]string, error)
}

// Merger combines multiple sources into one deduplicated universe.
type Merger struct {
	sources  []Source
	fallback []string
	logger   logger.Logger
}

// Option applies a configuration option to the Merger.
type Option func(*Merger)

// WithFallback overrides the built-in fallback symbol list.
func WithFallback(symbols []string) Option {
	return func(m *Merger) {
		if len(symbols) > 0 {
			m.fallback = symbols
		}
	}
}

// WithLogger sets a custom logger for the merger.
func WithLogger(l logger.Logger) Option {
	return func(m *Merger) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMerger creates a Merger over the given sources.
func NewMerger(sources []Source, opts ...Option) *Merger {
	m := &Merger{
		sources:  sources,
		fallback: majorSymbols,
		logger:   logger.Get().Named("universe"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Symbols queries all sources concurrently and merges their results in
// source order, dropping duplicates. Source errors are logged and
// tolerated; an entirely empty merge returns the fallback list.
func (m *Merger) Symbols(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([][]string, len(m.sources))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range m.sources {
		i, src := i, src
		g.Go(func() error {
			symbols, err := src.Symbols(gctx)
			if err != nil {
				m.logger.Warn(gctx, "symbol source failed",
					logger.String("source", src.Name()),
					logger.Error(err),
				)
				return nil // tolerated; other sources may still succeed
			}
			m.logger.Info(gctx, "symbol source done",
				logger.String("source", src.Name()),
				logger.Int("symbols", len(symbols)),
			)
			mu.Lock()
			results[i] = symbols
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	deduper := dedupe.NewInMemoryDeduper()
	var merged []string
	for _, symbols := range results {
		for _, s := range symbols {
			if s == "" {
				continue
			}
			if !deduper.SeenAndRecord(ctx, s) {
				merged = append(merged, s)
			}
		}
	}

	if len(merged) == 0 {
		m.logger.Warn(ctx, "all symbol sources failed; using fallback list",
			logger.Int("symbols", len(m.fallback)),
		)
		merged = append(merged, m.fallback...)
	}

	return merged, nil
}
