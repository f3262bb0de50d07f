// Package schedule triggers pipeline runs on a cron expression.
//
// A scheduled trigger goes through the same run path as a manual one; the
// only difference is the trigger label recorded on the run.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/moatwatch/moatwatch/pkg/logger"
)

// TriggerFunc starts one pipeline run with the given trigger label.
type TriggerFunc func(ctx context.Context, trigger string) error

// Scheduler wraps a cron runner around a trigger function.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	trigger TriggerFunc
	logger  logger.Logger
}

// NewScheduler creates a scheduler for the given cron spec. The spec uses
// the standard five-field format interpreted in the local timezone.
func NewScheduler(spec string, trigger TriggerFunc, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		spec:    spec,
		trigger: trigger,
		logger:  logger.Get().Named("schedule"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New()
	}

	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSpec, spec, err)
	}

	return s, nil
}

// Start registers the job and begins the cron loop. Runs triggered by the
// schedule are labeled "scheduled". Overlapping runs are not started; the
// trigger function is expected to reject a run already in flight.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.trigger(ctx, "scheduled"); err != nil {
			s.logger.Error(ctx, "scheduled run failed", logger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSpec, s.spec, err)
	}

	s.cron.Start()
	s.logger.Info(ctx, "scheduler started", logger.String("spec", s.spec))
	return nil
}

// Next returns the next scheduled activation after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	sched, err := cron.ParseStandard(s.spec)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(now)
}

// Stop halts the cron loop and waits for any running job to finish or the
// context to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop interrupted: %w", ctx.Err())
	}
}
