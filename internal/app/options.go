package service

import (
	"time"

	"github.com/moatwatch/moatwatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPublisher enables publishing through the given publisher.
func WithPublisher(p SitePublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithWorkerCount sets the number of fetch workers per run.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the minimum capacity of the fetch queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithBatching sets the enqueue batch size and the pause between batches.
func WithBatching(size int, pause time.Duration) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
		if pause >= 0 {
			s.batchPause = pause
		}
	}
}

// WithCollectTimeout sets the budget for the collection step.
func WithCollectTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.collectTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
