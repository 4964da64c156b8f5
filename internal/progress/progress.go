// Package progress provides an ordered event stream for long-running
// operations. It is a pure sequencing mechanism: it narrates an operation's
// steps but never retries them or alters their outcome.
package progress

import "sync"

// EventType discriminates the events an operation can emit.
type EventType string

const (
	// EventStatus carries a human-readable step message and a progress value.
	EventStatus EventType = "status"

	// EventComplete is the successful terminal event carrying the result.
	EventComplete EventType = "complete"

	// EventError is the failed terminal event carrying an error message.
	EventError EventType = "error"
)

// Event is a single notification in an operation's stream.
type Event struct {
	Type     EventType   `json:"type"`
	Message  string      `json:"message,omitempty"`
	Progress int         `json:"progress,omitempty"`
	Result   interface{} `json:"result,omitempty"`
}

// Emitter delivers an ordered stream of events for exactly one operation.
//
// Invariants enforced here rather than by every caller:
//   - status progress values are monotonically non-decreasing
//   - exactly one terminal event (complete or error) is delivered, always last
//   - emissions after the terminal event are dropped
type Emitter struct {
	mu       sync.Mutex
	events   chan Event
	progress int
	done     bool
}

// NewEmitter creates an emitter with the given channel buffer size. A buffer
// large enough for a full attempt lets producers run without a consumer
// draining concurrently.
func NewEmitter(buffer int) *Emitter {
	if buffer < 1 {
		buffer = 1
	}
	return &Emitter{events: make(chan Event, buffer)}
}

// Events returns the receive side of the stream. The channel is closed after
// the terminal event.
func (e *Emitter) Events() <-chan Event {
	return e.events
}

// Status emits a progress notification. Progress below the high-water mark is
// clamped up to it so consumers always observe a non-decreasing sequence.
func (e *Emitter) Status(message string, progress int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return
	}
	if progress < e.progress {
		progress = e.progress
	}
	if progress > 100 {
		progress = 100
	}
	e.progress = progress
	e.events <- Event{Type: EventStatus, Message: message, Progress: progress}
}

// Complete emits the successful terminal event and closes the stream.
func (e *Emitter) Complete(message string, result interface{}) {
	e.terminal(Event{Type: EventComplete, Message: message, Progress: 100, Result: result})
}

// Error emits the failed terminal event and closes the stream.
func (e *Emitter) Error(message string) {
	e.terminal(Event{Type: EventError, Message: message, Progress: e.currentProgress()})
}

func (e *Emitter) currentProgress() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

func (e *Emitter) terminal(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return
	}
	e.done = true
	e.events <- ev
	close(e.events)
}
