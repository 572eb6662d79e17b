// Package event publishes process lifecycle notifications to interested
// listeners. Delivery is asynchronous and best-effort: the scheduler must
// never block on an observer, so events are dropped once the queue is full.
package event

import (
	"sync"
)

// Config for the event service.
type Config struct {
	QueueBuffer int
}

// DefaultConfig returns a standard configuration for the event service.
func DefaultConfig() Config {
	return Config{QueueBuffer: 256}
}

// Service fans published events out to a single listener goroutine.
type Service struct {
	queue chan *Event

	mu       sync.Mutex
	stopCh   chan struct{}
	stopped  sync.WaitGroup
	listener func(*Event)
}

// New creates an event service.
func New(config Config) *Service {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Service{queue: make(chan *Event, config.QueueBuffer)}
}

// Publish enqueues an event without blocking; when the queue is full the
// event is dropped.
func (s *Service) Publish(e *Event) {
	if s == nil || e == nil {
		return
	}
	select {
	case s.queue <- e:
	default:
	}
}

// SetListener installs the handler and starts consuming events. A previously
// installed listener is stopped first.
func (s *Service) SetListener(handler func(*Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if handler == nil {
		return
	}
	s.listener = handler
	s.stopCh = make(chan struct{})
	s.stopped.Add(1)
	go s.listen(s.stopCh, handler)
}

func (s *Service) listen(stopCh chan struct{}, handler func(*Event)) {
	defer s.stopped.Done()
	for {
		select {
		case e := <-s.queue:
			handler(e)
		case <-stopCh:
			return
		}
	}
}

// Stop terminates the listener goroutine; pending events stay queued.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Service) stopLocked() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	s.stopped.Wait()
	s.stopCh = nil
	s.listener = nil
}
