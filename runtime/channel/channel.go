package channel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lyra-lang/lyra/internal/clock"
	"github.com/lyra-lang/lyra/runtime/process"
)

// Channel is a bounded multi-producer/multi-consumer FIFO queue of owned
// values. The zero value is not usable; construct with New.
//
// FIFO is a hard per-channel guarantee: for any two values A sent before B,
// a receiver that received both received A strictly before B. No order is
// promised among concurrently blocked senders beyond eventual admission, and
// no ordering exists across distinct channels.
type Channel[T any] struct {
	capacity int
	release  func(T)

	refs atomic.Int64

	// mu protects the ring buffer and both wait queues; it is only ever held
	// for O(1) metadata mutations and never across a suspension point.
	mu    sync.Mutex
	buf   []T
	head  int
	count int
	sendq []*waiter[T]
	recvq []*waiter[T]
}

// Option customises a channel at construction time.
type Option[T any] func(*Channel[T])

// WithRelease installs the per-value release hook applied to every value
// still buffered when the last handle is dropped.
func WithRelease[T any](fn func(T)) Option[T] {
	return func(c *Channel[T]) {
		c.release = fn
	}
}

// New creates a channel with the given capacity. A requested capacity below
// one is coerced up to one; capacity misconfiguration is clamped, never
// rejected. The reference count starts at one for the returned handle.
func New[T any](capacity int, options ...Option[T]) *Channel[T] {
	if capacity < 1 {
		capacity = 1
	}
	c := &Channel[T]{
		capacity: capacity,
		buf:      make([]T, capacity),
	}
	c.refs.Store(1)
	for _, option := range options {
		option(c)
	}
	return c
}

// Capacity returns the fixed buffer capacity.
func (c *Channel[T]) Capacity() int { return c.capacity }

// Len returns the number of currently buffered values.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Waiters returns how many processes are registered on either wait queue.
// Diagnostic only.
func (c *Channel[T]) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sendq) + len(c.recvq)
}

// Clone increments the reference count and returns an equivalent handle to
// the same buffer. Handles carry no exclusive payload, so they can be passed
// between processes without a recovery step.
func (c *Channel[T]) Clone() *Channel[T] {
	c.refs.Add(1)
	return c
}

// Release drops one handle. When the last handle is released no process can
// hold the channel any longer – and therefore none can be registered on
// either wait queue – so draining is race-free: every value still buffered is
// individually released.
func (c *Channel[T]) Release() {
	if c.refs.Add(-1) > 0 {
		return
	}
	c.mu.Lock()
	for c.count > 0 {
		v := c.pop()
		if c.release != nil {
			c.release(v)
		}
	}
	c.mu.Unlock()
}

// push appends a value to the ring buffer. Caller holds c.mu and has checked
// capacity.
func (c *Channel[T]) push(v T) {
	c.buf[(c.head+c.count)%c.capacity] = v
	c.count++
}

// pop removes the oldest value from the ring buffer. Caller holds c.mu and
// has checked count.
func (c *Channel[T]) pop() T {
	var zero T
	v := c.buf[c.head]
	c.buf[c.head] = zero
	c.head = (c.head + 1) % c.capacity
	c.count--
	return v
}

// admitSender moves the oldest blocked sender's value into the buffer,
// returning the entry to wake, or nil when no sender waits. Caller holds
// c.mu and has ensured free space.
func (c *Channel[T]) admitSender() *waiter[T] {
	w := c.popSendWaiter()
	if w == nil {
		return nil
	}
	c.push(w.value)
	var zero T
	w.value = zero
	w.moved = true
	return w
}

// Send transfers ownership of value into the channel. When the buffer is
// full the calling process registers on the send-side wait queue and
// suspends until a receiver frees a slot and moves the value in. The value
// must have no other live alias at the call site; the compiler enforces
// this, the runtime trusts it.
func (c *Channel[T]) Send(p *process.Proc, value T) {
	c.mu.Lock()
	if c.count < c.capacity {
		c.push(value)
		woken := c.popRecvWaiters()
		c.mu.Unlock()
		for _, w := range woken {
			w.proc.Wake()
		}
		return
	}

	entry := &waiter[T]{proc: p.Process(), value: value}
	c.sendq = append(c.sendq, entry)
	c.mu.Unlock()

	for {
		p.Park(process.ReasonSendFull)
		c.mu.Lock()
		moved := entry.moved
		c.mu.Unlock()
		if moved {
			return
		}
	}
}

// Receive removes and returns the oldest value, suspending the calling
// process while the buffer is empty.
func (c *Channel[T]) Receive(p *process.Proc) T {
	for {
		c.mu.Lock()
		if c.count > 0 {
			v := c.pop()
			sender := c.admitSender()
			c.mu.Unlock()
			if sender != nil {
				sender.proc.Wake()
			}
			return v
		}

		entry := &waiter[T]{proc: p.Process()}
		c.recvq = append(c.recvq, entry)
		c.mu.Unlock()

		p.Park(process.ReasonReceiveEmpty)
		// A spurious wake may return before this entry was consumed; drop it
		// so the retry does not leave a duplicate registration behind.
		c.removeRecv(entry)
	}
}

// TryReceive removes and returns the oldest value when one is buffered. It
// never suspends and never registers on a wait queue.
func (c *Channel[T]) TryReceive() (T, bool) {
	c.mu.Lock()
	if c.count == 0 {
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	v := c.pop()
	sender := c.admitSender()
	c.mu.Unlock()
	if sender != nil {
		sender.proc.Wake()
	}
	return v, true
}

// ReceiveUntil behaves like Receive bounded by an absolute deadline. A
// deadline already in the past returns a buffered value when one exists and
// gives up immediately otherwise, without suspending. When the timer fires
// the buffer is re-checked under the channel lock before giving up, so a
// value that arrived in the same instant is never discarded.
func (c *Channel[T]) ReceiveUntil(p *process.Proc, deadline time.Time) (T, bool) {
	var zero T
	for {
		c.mu.Lock()
		if c.count > 0 {
			v := c.pop()
			sender := c.admitSender()
			c.mu.Unlock()
			if sender != nil {
				sender.proc.Wake()
			}
			return v, true
		}
		if !clock.Now().Before(deadline) {
			c.mu.Unlock()
			return zero, false
		}

		entry := &waiter[T]{proc: p.Process()}
		c.recvq = append(c.recvq, entry)
		c.mu.Unlock()

		// Whichever of {value arrives, deadline elapses} happens first wakes
		// the process; entry removal is idempotent so the loser is harmless.
		cancel := clock.Schedule(deadline, func() {
			c.removeRecv(entry)
			entry.proc.Wake()
		})
		p.Park(process.ReasonReceiveEmpty)
		cancel()
		c.removeRecv(entry)
	}
}
