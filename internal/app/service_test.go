package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/moatwatch/moatwatch/internal/adapters/repository"
	"github.com/moatwatch/moatwatch/internal/domain/model"
	"github.com/moatwatch/moatwatch/internal/domain/types"
)

type fakeStore struct {
	mu        sync.Mutex
	wipes     int
	snapshots []model.Snapshot
	summary   *model.RunSummary
	latest    model.Snapshot
}

func (f *fakeStore) EnsureDirs(context.Context) error { return nil }

func (f *fakeStore) WipeOutput(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wipes++
	return nil
}

func (f *fakeStore) SaveSnapshot(_ context.Context, snap model.Snapshot, _ time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, snap)
	return "stock_data_test.json", nil
}

func (f *fakeStore) LoadLatest(context.Context) (model.Snapshot, error) {
	if f.latest == nil {
		return nil, repository.ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeStore) SaveSummary(_ context.Context, sum model.RunSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary = &sum
	return nil
}

func (f *fakeStore) LoadSummary(context.Context) (model.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summary == nil {
		return model.RunSummary{}, repository.ErrNotFound
	}
	return *f.summary, nil
}

func (f *fakeStore) DataDir() string   { return "data" }
func (f *fakeStore) OutputDir() string { return "output" }

type fakeUniverse struct {
	symbols []string
	err     error
}

func (f fakeUniverse) Symbols(context.Context) ([]string, error) { return f.symbols, f.err }

type fakeFetcher struct {
	gate chan struct{} // when set, blocks each fetch until closed
}

func (f *fakeFetcher) Fundamentals(ctx context.Context, symbol string) (*model.Facts, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &model.Facts{Symbol: symbol, Name: symbol, FieldCount: 12}, nil
}

type fakeDeriver struct{}

func (fakeDeriver) Derive(facts *model.Facts, _ time.Time) (model.Fundamentals, error) {
	return model.Fundamentals{Name: facts.Name}, nil
}

type fakeRanker struct {
	mu      sync.Mutex
	calls   int
	entries []types.Entry
	err     error
}

func (f *fakeRanker) Rank(_ context.Context, _ model.Snapshot) ([]types.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.entries, f.err
}

type fakeReporter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeReporter) Generate(context.Context, []types.Entry, time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type fakePublisher struct {
	sitePushes  int
	dataCommits int
}

func (f *fakePublisher) PublishSite(context.Context, time.Time) error {
	f.sitePushes++
	return nil
}

func (f *fakePublisher) CommitData(context.Context, time.Time) error {
	f.dataCommits++
	return nil
}

func newTestService(store *fakeStore, ranker *fakeRanker, reporter *fakeReporter, opts ...Option) *Service {
	base := []Option{
		WithWorkerCount(2),
		WithBatching(100, 0),
		WithCollectTimeout(5 * time.Second),
	}
	return New(store, fakeUniverse{symbols: []string{"TCS.NS", "INFY.NS", "500325.BO"}},
		&fakeFetcher{}, fakeDeriver{}, ranker, reporter, append(base, opts...)...)
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a wired pipeline service", t, func() {
		store := &fakeStore{}
		ranker := &fakeRanker{entries: []types.Entry{{Rank: 1, Symbol: "TCS", Score: 16}}}
		reporter := &fakeReporter{}
		svc := newTestService(store, ranker, reporter)

		Convey("When a manual run completes", func() {
			err := svc.Run(ctx, TriggerManual)

			Convey("Then the run succeeds end to end", func() {
				So(err, ShouldBeNil)
				So(store.wipes, ShouldEqual, 1)
				So(len(store.snapshots), ShouldEqual, 1)
				So(len(store.snapshots[0]), ShouldEqual, 3)
				So(ranker.calls, ShouldEqual, 1)
				So(reporter.calls, ShouldEqual, 1)
			})

			Convey("Then the summary records the outcome", func() {
				So(err, ShouldBeNil)
				sum, lastErr := svc.LastRun(ctx)
				So(lastErr, ShouldBeNil)
				So(sum.Status, ShouldEqual, "success")
				So(sum.Trigger, ShouldEqual, TriggerManual)
				So(sum.SymbolsDiscovered, ShouldEqual, 3)
				So(sum.SymbolsCollected, ShouldEqual, 3)
				So(sum.Picks, ShouldEqual, 1)
				So(sum.Published, ShouldBeFalse)
				So(store.summary, ShouldNotBeNil)
			})

			Convey("Then picks are served from memory", func() {
				So(err, ShouldBeNil)
				picks, picksErr := svc.Picks(ctx)
				So(picksErr, ShouldBeNil)
				So(len(picks), ShouldEqual, 1)
				So(picks[0].Symbol, ShouldEqual, "TCS")
			})
		})

		Convey("When a publisher is configured", func() {
			pub := &fakePublisher{}
			svc = newTestService(store, ranker, reporter, WithPublisher(pub))

			err := svc.Run(ctx, TriggerScheduled)

			Convey("Then the site is pushed and the data committed", func() {
				So(err, ShouldBeNil)
				So(pub.sitePushes, ShouldEqual, 1)
				So(pub.dataCommits, ShouldEqual, 1)
				sum, _ := svc.LastRun(ctx)
				So(sum.Published, ShouldBeTrue)
			})
		})

		Convey("When universe discovery fails", func() {
			svc = New(store, fakeUniverse{err: errors.New("sources down")},
				&fakeFetcher{}, fakeDeriver{}, ranker, reporter,
				WithCollectTimeout(time.Second))

			err := svc.Run(ctx, TriggerManual)

			Convey("Then the run fails before analysis", func() {
				So(err, ShouldNotBeNil)
				So(ranker.calls, ShouldEqual, 0)
				So(reporter.calls, ShouldEqual, 0)
				sum, _ := svc.LastRun(ctx)
				So(sum.Status, ShouldEqual, "failure")
			})
		})

		Convey("When report generation fails", func() {
			reporter.err = errors.New("disk full")

			err := svc.Run(ctx, TriggerManual)

			Convey("Then the run fails after the snapshot is saved", func() {
				So(err, ShouldNotBeNil)
				So(len(store.snapshots), ShouldEqual, 1)
				sum, _ := svc.LastRun(ctx)
				So(sum.Status, ShouldEqual, "failure")
			})
		})
	})
}

func TestRunCollectTimeout(t *testing.T) {
	ctx := context.Background()

	Convey("Given a collection budget smaller than the batch pause", t, func() {
		store := &fakeStore{}
		ranker := &fakeRanker{}
		reporter := &fakeReporter{}
		svc := New(store, fakeUniverse{symbols: []string{"A.NS", "B.NS"}},
			&fakeFetcher{}, fakeDeriver{}, ranker, reporter,
			WithWorkerCount(1),
			WithBatching(1, time.Hour),
			WithCollectTimeout(50*time.Millisecond))

		Convey("When the run exceeds the budget", func() {
			err := svc.Run(ctx, TriggerManual)

			Convey("Then it fails with the timeout and skips analysis", func() {
				So(errors.Is(err, ErrCollectTimeout), ShouldBeTrue)
				So(ranker.calls, ShouldEqual, 0)
				So(reporter.calls, ShouldEqual, 0)
			})
		})
	})
}

func TestRunCancelled(t *testing.T) {
	Convey("Given a run interrupted by shutdown", t, func() {
		store := &fakeStore{}
		ranker := &fakeRanker{}
		reporter := &fakeReporter{}
		svc := New(store, fakeUniverse{symbols: []string{"A.NS", "B.NS"}},
			&fakeFetcher{}, fakeDeriver{}, ranker, reporter,
			WithWorkerCount(1),
			WithBatching(1, time.Hour),
			WithCollectTimeout(time.Minute))

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		Convey("When the parent context is cancelled mid-collection", func() {
			err := svc.Run(ctx, TriggerManual)

			Convey("Then the failure reports cancellation, not a budget overrun", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(errors.Is(err, ErrCollectTimeout), ShouldBeFalse)
				So(reporter.calls, ShouldEqual, 0)
			})
		})
	})
}

func TestRunInProgress(t *testing.T) {
	ctx := context.Background()

	Convey("Given a run already in flight", t, func() {
		store := &fakeStore{}
		gate := make(chan struct{})
		fetcher := &fakeFetcher{gate: gate}
		svc := New(store, fakeUniverse{symbols: []string{"TCS.NS"}},
			fetcher, fakeDeriver{}, &fakeRanker{}, &fakeReporter{},
			WithWorkerCount(1),
			WithBatching(100, 0),
			WithCollectTimeout(5*time.Second))

		done := make(chan error, 1)
		go func() { done <- svc.Run(ctx, TriggerScheduled) }()

		for !svc.Running() {
			time.Sleep(5 * time.Millisecond)
		}

		Convey("When a second run is requested", func() {
			err := svc.Run(ctx, TriggerManual)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrRunInProgress), ShouldBeTrue)
			})
		})

		close(gate)
		So(<-done, ShouldBeNil)
		So(svc.Running(), ShouldBeFalse)
	})
}

func TestPicksFallback(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that has not run since start", t, func() {
		ranker := &fakeRanker{entries: []types.Entry{{Rank: 1, Symbol: "INFY"}}}

		Convey("When a stored snapshot exists", func() {
			store := &fakeStore{latest: model.Snapshot{"INFY.NS": {Name: "Infosys"}}}
			svc := newTestService(store, ranker, &fakeReporter{})

			picks, err := svc.Picks(ctx)

			Convey("Then picks are recomputed from it", func() {
				So(err, ShouldBeNil)
				So(len(picks), ShouldEqual, 1)
				So(ranker.calls, ShouldEqual, 1)
			})
		})

		Convey("When no snapshot exists", func() {
			svc := newTestService(&fakeStore{}, ranker, &fakeReporter{})

			picks, err := svc.Picks(ctx)

			Convey("Then an empty list is returned", func() {
				So(err, ShouldBeNil)
				So(picks, ShouldNotBeNil)
				So(len(picks), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a stored summary from a previous process", t, func() {
		store := &fakeStore{summary: &model.RunSummary{RunID: "old", Status: "success"}}
		svc := newTestService(store, &fakeRanker{}, &fakeReporter{})

		Convey("Then LastRun falls back to it", func() {
			sum, err := svc.LastRun(ctx)
			So(err, ShouldBeNil)
			So(sum.RunID, ShouldEqual, "old")
		})
	})
}
