package core

import "time"

// EventKind labels the notification categories emitted while a turn runs.
type EventKind string

const (
	// EventDebug carries the turn debug banner and other diagnostics.
	EventDebug EventKind = "debug"
	// EventRouting announces a handoff from one agent to another.
	EventRouting EventKind = "routing"
	// EventToolUsage is the single aggregated "tools used" notice per turn,
	// distinct from per-tool progress emitted by tools themselves.
	EventToolUsage EventKind = "tool_usage"
	// EventProgress carries per-tool progress emitted by tools.
	EventProgress EventKind = "progress"
	// EventAnomaly flags recoverable oddities such as a handoff agent that
	// named no resolvable target or an exhausted hop budget.
	EventAnomaly EventKind = "anomaly"
	// EventError carries user-safe failure notices.
	EventError EventKind = "error"
	// EventFinal terminates the turn's event stream; exactly one is emitted
	// per successfully persisted turn.
	EventFinal EventKind = "final"
)

// Event is a notification surfaced to the caller-provided sink while a turn
// is processed. Events are informational; turn results travel on the return
// path of Runner.RunTurn.
type Event struct {
	ID        string         `json:"id"`
	Kind      EventKind      `json:"kind"`
	Author    string         `json:"author,omitempty"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent constructs an event with a generated ID and UTC timestamp.
func NewEvent(kind EventKind, author, message string) Event {
	return Event{
		ID:        NewID(),
		Kind:      kind,
		Author:    author,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// EventSink receives turn notifications. Implementations must not block for
// long; the core emits sequentially on the turn goroutine.
type EventSink interface {
	Emit(ev Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ev Event)

// Emit implements EventSink.
func (f EventSinkFunc) Emit(ev Event) { f(ev) }

// NopEventSink discards all events.
type NopEventSink struct{}

// Emit implements EventSink.
func (NopEventSink) Emit(Event) {}

// TraceEntry is an audit record attached to the persisted turn message:
// the debug banner, one routing notice per handoff, and the aggregated
// tool-usage notice when tools ran.
type TraceEntry struct {
	Kind    EventKind `json:"kind"`
	Agent   string    `json:"agent,omitempty"`
	Summary string    `json:"summary"`
}
