package process

import (
	"context"
	"fmt"
	"sync"

	"github.com/lyra-lang/lyra/internal/idgen"
	"github.com/lyra-lang/lyra/tracing"
)

// Process state constants
const (
	StateReady      = "ready"
	StateRunning    = "running"
	StateBlocked    = "blocked"
	StateTerminated = "terminated"
)

// Reason describes why a process is blocked.
type Reason string

const (
	ReasonSendFull     Reason = "send-full"
	ReasonReceiveEmpty Reason = "receive-empty"
	ReasonWaitMany     Reason = "wait-many"
	ReasonSleep        Reason = "sleep"
)

// Outcome is the result of resuming a process on a worker.
type Outcome int

const (
	// OutcomeDone indicates the entry function returned or panicked.
	OutcomeDone Outcome = iota
	// OutcomeBlocked indicates the process registered on a wait queue and
	// suspended; the worker must finish the park via CommitPark.
	OutcomeBlocked
	// OutcomePreempted indicates the process exhausted its fairness quota
	// and must be re-enqueued as ready.
	OutcomePreempted
)

// Entry is the top-level function a process executes.
type Entry func(*Proc) error

// Process is an isolated, independently scheduled unit of execution. It is
// mutated only by the scheduler (state transitions) and by the resource it is
// blocked on (wake-up).
type Process struct {
	id    string
	entry Entry
	quota int

	// Span covers the whole process lifetime; set by the scheduler at spawn
	// and ended when the process terminates.
	Span *tracing.Span

	mu          sync.Mutex
	state       string
	reason      Reason
	wakePending bool
	waker       func(*Process)
	started     bool
	err         error

	// resume/yield form the handshake between the worker goroutine and the
	// process goroutine; at most one side runs at any time.
	resumeCh chan struct{}
	yieldCh  chan Outcome

	// steps counts execution quanta since the last preemption; touched only
	// from the process goroutine.
	steps int

	done chan struct{}
}

// New creates a process in Ready state. quota bounds how many Checkpoint
// calls may pass before the process is preempted; zero disables preemption.
func New(entry Entry, quota int) *Process {
	return &Process{
		id:       idgen.New(),
		entry:    entry,
		quota:    quota,
		state:    StateReady,
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan Outcome),
		done:     make(chan struct{}),
	}
}

// ID returns the process identifier.
func (p *Process) ID() string { return p.id }

// State returns the current lifecycle state.
func (p *Process) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// BlockReason returns why the process is blocked; empty unless blocked.
func (p *Process) BlockReason() Reason {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

// Err returns the terminal error of the process, nil while it is still live
// or when it completed normally.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Done is closed once the process terminated.
func (p *Process) Done() <-chan struct{} { return p.done }

// Wait blocks until the process terminates or ctx expires.
func (p *Process) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetWaker installs the scheduler callback invoked by Wake. It must be set
// before the process is first enqueued.
func (p *Process) SetWaker(fn func(*Process)) {
	p.mu.Lock()
	p.waker = fn
	p.mu.Unlock()
}

// Wake asks the scheduler to move a blocked process back to its ready queue.
// Safe to call from any goroutine and idempotent.
func (p *Process) Wake() {
	p.mu.Lock()
	waker := p.waker
	p.mu.Unlock()
	if waker != nil {
		waker(p)
	}
}

// Resume runs the process until it terminates, suspends or exhausts its
// fairness quota. Called only by a scheduler worker that owns the process.
func (p *Process) Resume() Outcome {
	p.mu.Lock()
	p.state = StateRunning
	p.reason = ""
	if !p.started {
		p.started = true
		go p.run()
	}
	p.mu.Unlock()

	p.resumeCh <- struct{}{}
	return <-p.yieldCh
}

// MarkReady transitions a blocked process to Ready, returning true when the
// caller must enqueue it. A wake that races with an in-flight park (the
// process registered on a wait queue but its worker has not finished parking
// it yet) is recorded and consumed later by CommitPark.
func (p *Process) MarkReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateBlocked:
		p.state = StateReady
		p.reason = ""
		return true
	case StateRunning:
		p.wakePending = true
		return false
	default:
		// Ready: already enqueued. Terminated: nothing to wake.
		return false
	}
}

// CommitPark finishes parking a process whose Resume returned OutcomeBlocked.
// It returns true when a wake arrived during the park window, in which case
// the worker must re-enqueue the process instead of leaving it parked.
func (p *Process) CommitPark() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.wakePending {
		p.wakePending = false
		p.state = StateReady
		p.reason = ""
		return true
	}
	p.state = StateBlocked
	return false
}

// MarkPreempted transitions a preempted process back to Ready prior to
// re-enqueueing it.
func (p *Process) MarkPreempted() {
	p.mu.Lock()
	p.state = StateReady
	p.wakePending = false
	p.mu.Unlock()
}

// run hosts the entry function. An unrecoverable error in the entry
// terminates only this process; the scheduler and other processes are
// unaffected.
func (p *Process) run() {
	<-p.resumeCh

	defer func() {
		if r := recover(); r != nil {
			p.finish(fmt.Errorf("process %s panicked: %v", p.id, r))
		}
	}()
	p.finish(p.entry(&Proc{p: p}))
}

// finish records the terminal state and hands control back to the worker.
func (p *Process) finish(err error) {
	p.mu.Lock()
	p.state = StateTerminated
	p.reason = ""
	p.err = err
	p.mu.Unlock()
	close(p.done)
	p.yieldCh <- OutcomeDone
}
