package app

import (
	"pricewatch/internal/adapters/mq/queue"
	"pricewatch/internal/adapters/notify"
	"pricewatch/internal/adapters/repository"
	"pricewatch/pkg/logger"
)

// Option configures a Service.
type Option func(*Service)

// WithStore sets the record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithExtractor sets the extraction engine.
func WithExtractor(e Extractor) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithQueue sets the check job queue.
func WithQueue(q queue.Queue) Option {
	return func(s *Service) {
		s.queue = q
	}
}

// WithNotifier sets the alert delivery channel.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithWorkerCount sets the number of concurrent check workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}
