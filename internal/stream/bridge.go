// Package stream relays progress events from a blocking workflow goroutine
// to the HTTP handler that is writing an SSE response.
package stream

import "sync"

// Event types carried over a Bridge. Connected and mode frames are written by
// the handler before the workflow starts; the rest originate in the workflow.
const (
	EventTaskUpdate   = "task_update"
	EventTaskComplete = "task_complete"
	EventStep         = "step"
	EventCrewDone     = "crew_done"
	EventError        = "error"
)

// Event is one progress notification. CrewDone carries the final workflow
// result; Error carries the failure description. Both are terminal: the
// consumer stops reading after either.
type Event struct {
	Type    string
	Message string
	Result  string
	Err     string
}

// Terminal reports whether no further events follow this one.
func (e Event) Terminal() bool {
	return e.Type == EventCrewDone || e.Type == EventError
}

// Bridge is a single-producer/single-consumer FIFO queue tied to one
// in-flight workflow invocation. The producer runs in its own goroutine and
// publishes through a channel handoff; the consumer selects on Events.
//
// If the consumer abandons the bridge before a terminal event (client
// disconnect), Close unblocks any pending Publish and later events are
// silently discarded. The producer itself is not interrupted; it runs to
// completion in its goroutine.
type Bridge struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
}

// Publish enqueues an event in FIFO order. It returns false when the bridge
// has been closed and the event was dropped.
func (b *Bridge) Publish(ev Event) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.events <- ev:
		return true
	case <-b.done:
		return false
	}
}

// Events is the consumer side of the queue.
func (b *Bridge) Events() <-chan Event {
	return b.events
}

// Close detaches the consumer. Safe to call more than once.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}
