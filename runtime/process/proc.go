package process

import (
	"time"

	"github.com/lyra-lang/lyra/internal/clock"
)

// Proc is the in-process handle passed to a process entry function. Its
// methods may only be called from the goroutine running that entry; they are
// the suspension points of the runtime.
type Proc struct {
	p *Process
}

// ID returns the identifier of the owning process.
func (x *Proc) ID() string { return x.p.id }

// Process returns the owning process, used by resources registering the
// process on their wait queues.
func (x *Proc) Process() *Process { return x.p }

// Checkpoint is the fairness quota accounting point. An interpreter calls it
// once per execution quantum; once the quota is exhausted the process yields
// back to its worker and is re-enqueued as ready, without any observable
// state change.
func (x *Proc) Checkpoint() {
	p := x.p
	if p.quota <= 0 {
		return
	}
	p.steps++
	if p.steps < p.quota {
		return
	}
	p.steps = 0
	p.yieldCh <- OutcomePreempted
	<-p.resumeCh
}

// Park suspends the process until a Wake moves it back to a ready queue. The
// caller must have registered the process on the wait queue that will wake it
// before calling Park. Callers are expected to re-check their wait condition
// after Park returns: a pending wake left over from an earlier race may cause
// a spurious return.
func (x *Proc) Park(reason Reason) {
	p := x.p
	p.mu.Lock()
	p.reason = reason
	p.mu.Unlock()
	p.yieldCh <- OutcomeBlocked
	<-p.resumeCh
}

// Sleep suspends the process for at least the given duration. A duration of
// zero or less returns immediately without suspending.
func (x *Proc) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	p := x.p
	deadline := clock.Now().Add(d)
	cancel := clock.Schedule(deadline, p.Wake)
	defer cancel()
	for clock.Now().Before(deadline) {
		x.Park(ReasonSleep)
	}
}
