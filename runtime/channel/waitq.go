package channel

import (
	"sync/atomic"

	"github.com/lyra-lang/lyra/runtime/process"
)

// waiter is one wait-queue entry: a blocked process together with the data
// needed to wake it exactly once. Entries belonging to a multi-channel wait
// share a single fired flag so that only the first channel to become
// non-empty wakes the process; the remaining entries turn stale and are
// discarded instead of woken.
type waiter[T any] struct {
	proc *process.Process

	// fired is non-nil only for multi-channel wait entries.
	fired *atomic.Bool

	// value/moved are used by send-side entries: the blocked sender's value
	// travels with the entry and is moved into the buffer by the waking
	// receiver.
	value T
	moved bool
}

// claim consumes the entry's wake exactly once. Plain entries are always
// claimable; shared entries race on the fired flag.
func (w *waiter[T]) claim() bool {
	if w.fired == nil {
		return true
	}
	return w.fired.CompareAndSwap(false, true)
}

// popRecvWaiters removes and returns the receive-side entries to wake for one
// freshly buffered value: every claimable shared entry ahead of the first
// plain receiver, plus that receiver itself. A shared entry belongs to a
// multi-channel wait and consumes no value, so it must never count as the one
// woken receiver – it is woken in passing and the scan continues until a
// plain entry takes the value's wake. Stale shared entries are discarded.
// Caller holds c.mu.
func (c *Channel[T]) popRecvWaiters() []*waiter[T] {
	var woken []*waiter[T]
	for len(c.recvq) > 0 {
		w := c.recvq[0]
		c.recvq = c.recvq[1:]
		if !w.claim() {
			continue
		}
		woken = append(woken, w)
		if w.fired == nil {
			break
		}
	}
	return woken
}

// popSendWaiter removes and returns the oldest send-side entry. Caller holds
// c.mu.
func (c *Channel[T]) popSendWaiter() *waiter[T] {
	if len(c.sendq) == 0 {
		return nil
	}
	w := c.sendq[0]
	c.sendq = c.sendq[1:]
	return w
}

// removeRecv deletes the entry from the receive-side queue when still
// present. Removal happens either through the waking event or through
// deadline expiry, whichever comes first; doing it by search keeps the
// operation idempotent.
func (c *Channel[T]) removeRecv(w *waiter[T]) {
	c.mu.Lock()
	for i, cur := range c.recvq {
		if cur == w {
			c.recvq = append(c.recvq[:i], c.recvq[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}
