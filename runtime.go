package lyra

import (
	"context"

	"github.com/lyra-lang/lyra/runtime/process"
	"github.com/lyra-lang/lyra/service/event"
	"github.com/lyra-lang/lyra/service/scheduler"
)

// Runtime is the embedder-facing façade over the Lyra concurrent core. It
// wires the scheduler, the event service and the configuration into a single
// owned context that is constructed once at startup and torn down at
// shutdown; no scheduler state is ambient or global.
type Runtime struct {
	config    *Config
	scheduler *scheduler.Service
	events    *event.Service
	listener  func(*event.Event)
}

// New creates a runtime from the supplied options.
func New(options ...Option) (*Runtime, error) {
	r := &Runtime{config: DefaultConfig()}
	for _, option := range options {
		option(r)
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	if r.events == nil {
		r.events = event.New(event.Config{QueueBuffer: r.config.Events.QueueBuffer})
	}
	if r.listener != nil {
		r.events.SetListener(r.listener)
	}

	sched, err := scheduler.New(
		scheduler.WithWorkers(r.config.Scheduler.Workers),
		scheduler.WithFairnessQuota(r.config.Scheduler.FairnessQuota),
		scheduler.WithEventService(r.events),
	)
	if err != nil {
		return nil, err
	}
	r.scheduler = sched
	return r, nil
}

// Start launches the scheduler worker pool.
func (r *Runtime) Start(ctx context.Context) error {
	return r.scheduler.Start(ctx)
}

// Spawn creates a new process executing entry and enqueues it ready. It
// never blocks the caller.
func (r *Runtime) Spawn(ctx context.Context, entry process.Entry) (*process.Process, error) {
	return r.scheduler.Spawn(ctx, entry)
}

// GetProcess returns the live process with the given id, or nil once the
// process has terminated or when the id is unknown.
func (r *Runtime) GetProcess(id string) *process.Process {
	return r.scheduler.GetProcess(id)
}

// Scheduler exposes the underlying scheduler service.
func (r *Runtime) Scheduler() *scheduler.Service {
	return r.scheduler
}

// Events exposes the lifecycle event service.
func (r *Runtime) Events() *event.Service {
	return r.events
}

// Shutdown stops the runtime gracefully: workers finish the processes they
// are currently resuming before exiting. Parked and ready processes are
// abandoned where they stand.
func (r *Runtime) Shutdown() {
	r.scheduler.Shutdown()
	r.events.Stop()
}

// Kill stops the runtime immediately without waiting for running processes.
// Per-value cleanup for still-live data is deliberately skipped, trading
// destructor correctness for exit latency.
func (r *Runtime) Kill() {
	r.scheduler.Kill()
	r.events.Stop()
}
