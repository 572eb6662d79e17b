package scheduler

import (
	"context"
	"sync"

	"github.com/lyra-lang/lyra/runtime/process"
)

// readyQueue is the unbounded FIFO of ready processes owned by one worker.
// Push never blocks so that wakes issued from inside another process's
// execution cannot stall a worker.
type readyQueue struct {
	mu     sync.Mutex
	items  []*process.Process
	notify chan struct{}
}

func newReadyQueue() *readyQueue {
	return &readyQueue{notify: make(chan struct{}, 1)}
}

// Push appends a process and nudges the worker when it sleeps.
func (q *readyQueue) Push(p *process.Process) {
	q.mu.Lock()
	q.items = append(q.items, p)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop blocks until a process is available or the context is cancelled.
func (q *readyQueue) Pop(ctx context.Context) (*process.Process, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			p := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return p, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of queued processes.
func (q *readyQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
