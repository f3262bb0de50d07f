package service

import (
	"context"
	"sync"
	"time"

	"github.com/moatwatch/moatwatch/internal/domain/model"
)

// snapshotCollector accumulates worker outcomes into a snapshot. Symbols
// that failed or were skipped keep an entry with the error recorded, so the
// snapshot documents the whole universe attempted.
type snapshotCollector struct {
	mu        sync.Mutex
	snap      model.Snapshot
	collected int
	skipped   int
	failed    int
}

func newSnapshotCollector() *snapshotCollector {
	return &snapshotCollector{snap: make(model.Snapshot)}
}

func (c *snapshotCollector) Record(_ context.Context, symbol string, f model.Fundamentals) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap[symbol] = f
	c.collected++
}

func (c *snapshotCollector) Skip(_ context.Context, symbol string, reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap[symbol] = model.Fundamentals{
		Err:         reason.Error(),
		LastUpdated: time.Now().Format("2006-01-02 15:04"),
	}
	c.skipped++
}

func (c *snapshotCollector) Fail(_ context.Context, symbol string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap[symbol] = model.Fundamentals{
		Err:         err.Error(),
		LastUpdated: time.Now().Format("2006-01-02 15:04"),
	}
	c.failed++
}

func (c *snapshotCollector) result() (model.Snapshot, int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap, c.collected, c.skipped, c.failed
}
