package event

import (
	"time"

	"github.com/lyra-lang/lyra/internal/clock"
)

// Kind classifies a process lifecycle event.
type Kind string

const (
	ProcessSpawned   Kind = "process.spawned"
	ProcessCompleted Kind = "process.completed"
	ProcessFailed    Kind = "process.failed"
)

// Event describes one process lifecycle transition.
type Event struct {
	Kind      Kind      `json:"kind"`
	ProcessID string    `json:"processID"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEvent creates an event stamped with the runtime clock.
func NewEvent(kind Kind, processID string) *Event {
	return &Event{
		Kind:      kind,
		ProcessID: processID,
		CreatedAt: clock.Now(),
	}
}
