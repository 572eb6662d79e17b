package scheduler

import (
	"github.com/lyra-lang/lyra/service/event"
)

// Option customises the scheduler service.
type Option func(*Service)

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithFairnessQuota sets the preemption step budget; zero disables
// preemption.
func WithFairnessQuota(quota int) Option {
	return func(s *Service) {
		s.config.FairnessQuota = quota
	}
}

// WithEventService sets the lifecycle event service
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithConfig replaces the whole configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
