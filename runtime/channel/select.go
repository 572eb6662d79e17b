package channel

import (
	"sync/atomic"

	"github.com/lyra-lang/lyra/runtime/process"
)

// Wait blocks the calling process until any of the given channels holds at
// least one buffered value at some point after the call. No value is
// consumed; the intended usage is a poll-then-wait loop that drains with
// TryReceive and only calls Wait once every channel came up empty.
//
// A single fired flag is shared by one registration per channel; the first
// channel to become non-empty claims the flag and wakes the process, turning
// every other registration stale. All registrations are removed before Wait
// returns, so none can leak.
func Wait[T any](p *process.Proc, channels ...*Channel[T]) {
	if len(channels) == 0 {
		return
	}

	fired := &atomic.Bool{}
	entries := make([]*waiter[T], 0, len(channels))
	for _, c := range channels {
		if fired.Load() {
			break
		}
		c.mu.Lock()
		if c.count > 0 {
			c.mu.Unlock()
			fired.Store(true)
			break
		}
		entry := &waiter[T]{proc: p.Process(), fired: fired}
		c.recvq = append(c.recvq, entry)
		entries = append(entries, entry)
		c.mu.Unlock()
	}

	for !fired.Load() {
		p.Park(process.ReasonWaitMany)
		if fired.Load() {
			break
		}
		// Spurious wake: poll the whole set before parking again.
		for _, c := range channels {
			if c.Len() > 0 {
				fired.Store(true)
				break
			}
		}
	}

	for i, entry := range entries {
		channels[i].removeRecv(entry)
	}
}
