package lyra

import (
	"github.com/lyra-lang/lyra/service/event"
)

// Option customises the Runtime façade.
type Option func(r *Runtime)

// WithConfig sets the whole runtime configuration
func WithConfig(config *Config) Option {
	return func(r *Runtime) {
		r.config = config
	}
}

// WithWorkers sets the number of scheduler workers
func WithWorkers(count int) Option {
	return func(r *Runtime) {
		r.config.Scheduler.Workers = count
	}
}

// WithFairnessQuota sets the preemption step budget
func WithFairnessQuota(quota int) Option {
	return func(r *Runtime) {
		r.config.Scheduler.FairnessQuota = quota
	}
}

// WithEventService sets the lifecycle event service
func WithEventService(events *event.Service) Option {
	return func(r *Runtime) {
		r.events = events
	}
}

// WithEventListener installs a lifecycle event handler on the runtime's
// event service.
func WithEventListener(handler func(*event.Event)) Option {
	return func(r *Runtime) {
		r.listener = handler
	}
}
