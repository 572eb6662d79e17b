package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/lyra-lang/lyra/runtime/process"
	"github.com/lyra-lang/lyra/service/event"
	"github.com/lyra-lang/lyra/tracing"
)

// Config represents scheduler service configuration
type Config struct {
	// WorkerCount is the number of worker goroutines hosting processes
	WorkerCount int

	// FairnessQuota bounds how many execution steps a process may take
	// before it is preempted back to a ready queue; zero disables preemption
	FairnessQuota int
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount:   4,
		FairnessQuota: 1024,
	}
}

// Service multiplexes processes onto a fixed pool of workers.
type Service struct {
	config Config
	events *event.Service

	queues []*readyQueue
	next   atomic.Uint64

	workers  []*worker
	workerWg sync.WaitGroup

	mu      sync.Mutex
	procs   map[string]*process.Process
	started bool
	stopped bool
}

type worker struct {
	id       int
	service  *Service
	queue    *readyQueue
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a new scheduler service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
		procs:  make(map[string]*process.Process),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.config.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", s.config.WorkerCount)
	}
	if s.config.FairnessQuota < 0 {
		return nil, fmt.Errorf("fairness quota must not be negative, got %d", s.config.FairnessQuota)
	}
	return s, nil
}

// Start begins the worker pool. Each worker owns one ready queue.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	s.started = true

	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			service:  s,
			queue:    newReadyQueue(),
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.queues = append(s.queues, w.queue)
		s.workers = append(s.workers, w)
		s.workerWg.Add(1)
		go w.run()
	}
	return nil
}

// Spawn places a new process in ready state onto some worker's ready queue,
// load-balanced round-robin. It never blocks the caller.
func (s *Service) Spawn(ctx context.Context, entry process.Entry) (p *process.Process, err error) {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return nil, fmt.Errorf("scheduler is not running")
	}
	s.mu.Unlock()

	if entry == nil {
		return nil, fmt.Errorf("entry cannot be nil")
	}

	p = process.New(entry, s.config.FairnessQuota)

	_, span := tracing.StartSpan(ctx, "process.run", "INTERNAL")
	span.WithAttributes(map[string]string{"process.id": p.ID()})
	p.Span = span

	p.SetWaker(s.wake)
	s.mu.Lock()
	s.procs[p.ID()] = p
	s.mu.Unlock()
	s.events.Publish(event.NewEvent(event.ProcessSpawned, p.ID()))
	s.enqueue(p)
	return p, nil
}

// GetProcess returns the live process with the given id, or nil once the
// process has terminated or when the id is unknown.
func (s *Service) GetProcess(id string) *process.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.procs[id]
}

// Processes returns the ids of all live processes.
func (s *Service) Processes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.procs))
	for id := range s.procs {
		ids = append(ids, id)
	}
	return ids
}

// Wake transitions a blocked process to ready and re-enqueues it. Callable
// from any goroutine, including from inside another process's execution, and
// idempotent.
func (s *Service) Wake(p *process.Process) {
	s.wake(p)
}

func (s *Service) wake(p *process.Process) {
	if p.MarkReady() {
		s.enqueue(p)
	}
}

func (s *Service) enqueue(p *process.Process) {
	n := uint64(len(s.queues))
	s.queues[s.next.Add(1)%n].Push(p)
}

// run executes ready processes until the worker context is cancelled.
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		p, err := w.queue.Pop(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			continue
		}

		switch p.Resume() {
		case process.OutcomeDone:
			w.service.finalize(p)
		case process.OutcomePreempted:
			p.MarkPreempted()
			w.service.enqueue(p)
		case process.OutcomeBlocked:
			// The process registered itself on a wait queue before
			// yielding; it stays parked unless a wake raced the park.
			if p.CommitPark() {
				w.service.enqueue(p)
			}
		}
	}
}

// finalize records the terminal outcome of a process. A failed process has
// no effect on the scheduler's queues or on other processes.
func (s *Service) finalize(p *process.Process) {
	s.mu.Lock()
	delete(s.procs, p.ID())
	s.mu.Unlock()

	err := p.Err()
	tracing.EndSpan(p.Span, err)
	if err != nil {
		log.Printf("scheduler: process %s failed: %v", p.ID(), err)
		e := event.NewEvent(event.ProcessFailed, p.ID())
		e.Error = err.Error()
		s.events.Publish(e)
		return
	}
	s.events.Publish(event.NewEvent(event.ProcessCompleted, p.ID()))
}

// Shutdown stops the scheduler gracefully: no further spawns are accepted,
// workers finish the process they are currently resuming and then exit.
// Ready and parked processes are abandoned where they stand; they can no
// longer be woken once the workers are gone.
func (s *Service) Shutdown() {
	if s.stop() {
		s.workerWg.Wait()
	}
}

// Kill requests immediate global termination: workers are told to stop and
// Kill returns without waiting for them, even mid-resume. Per-value cleanup
// for still-live data in any process is deliberately skipped, trading
// destructor correctness for shutdown latency.
func (s *Service) Kill() {
	s.stop()
}

// stop marks the scheduler stopped and cancels every worker, returning false
// when it already happened.
func (s *Service) stop() bool {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return false
	}
	s.stopped = true
	s.mu.Unlock()

	for _, w := range s.workers {
		w.cancelFn()
	}
	return true
}
