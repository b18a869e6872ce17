package routing

import (
	"maps"

	"github.com/loreweave/loreweave/core"
)

// TurnState accumulates the observable outcome of one turn across routing
// passes and hops. RoutingAttempts is monotonic: it advances by exactly one
// per extractor pass whatever the outcome, giving callers a reliable retry
// signal.
type TurnState struct {
	Response        string
	Routed          bool
	RoutingAttempts int
	Fields          map[string]any
	Transcript      []core.ToolResult
	Metadata        Metadata
}

// NewTurnState returns an empty turn state.
func NewTurnState() *TurnState {
	return &TurnState{Fields: map[string]any{}}
}

// Merge copies fields into the state additively: incoming keys are set,
// unrelated existing keys are never overwritten or removed.
func (s *TurnState) Merge(fields map[string]any) {
	if len(fields) == 0 {
		return
	}
	maps.Copy(s.Fields, fields)
}

// Capture records an invocation result: the tool transcript is appended and
// the agent's direct reply (when present) becomes the current response.
func (s *TurnState) Capture(res *core.InvokeResult) {
	if res == nil {
		return
	}
	s.Transcript = append(s.Transcript, res.ToolResults...)
	if reply := res.Reply(); reply != "" {
		s.Response = reply
	}
}

// ToolNames returns the deduplicated names of all tools executed this turn,
// preserving execution order.
func (s *TurnState) ToolNames() []string {
	seen := make(map[string]struct{}, len(s.Transcript))
	names := make([]string, 0, len(s.Transcript))
	for _, tr := range s.Transcript {
		if _, dup := seen[tr.Name]; dup {
			continue
		}
		seen[tr.Name] = struct{}{}
		names = append(names, tr.Name)
	}
	return names
}
