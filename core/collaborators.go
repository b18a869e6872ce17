package core

import (
	"context"
	"time"
)

// ToolResult records one executed tool call observed in a turn's transcript.
// Output holds the tool's serialized result; Error is non-empty when the
// tool failed.
type ToolResult struct {
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Output    string `json:"output"`
	Error     string `json:"error,omitempty"`
}

// InvokeResult is what the execution collaborator returns for one agent
// invocation: the produced messages (assistant reply plus any intermediate
// tool-role messages) and the executed tool-call records.
type InvokeResult struct {
	Messages    []Message      `json:"messages"`
	ToolResults []ToolResult   `json:"tool_results"`
	State       map[string]any `json:"state,omitempty"`
}

// Reply returns the final assistant-role message text, or "" when the
// invocation produced none.
func (r *InvokeResult) Reply() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleAssistant {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Executor is the tool-enabled execution collaborator. An implementation
// resolves the agent's model, runs the model/tool exchange, and is the only
// component that writes checkpoint content.
type Executor interface {
	Invoke(ctx context.Context, agent *AgentDefinition, messages []Message, identity ThreadIdentity) (*InvokeResult, error)
}

// Checkpoint is the opaque continuity state kept per composite thread
// identity. Once a checkpoint exists, callers resubmit only the newest
// turn's message; the stored history supplies the rest.
type Checkpoint struct {
	Key      string         `json:"key"`
	Messages []Message      `json:"messages"`
	State    map[string]any `json:"state,omitempty"`
	Created  time.Time      `json:"created"`
	Updated  time.Time      `json:"updated"`
}

// Clone returns a deep copy safe for independent mutation.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	clone := &Checkpoint{
		Key:      c.Key,
		Messages: make([]Message, len(c.Messages)),
		Created:  c.Created,
		Updated:  c.Updated,
	}
	copy(clone.Messages, c.Messages)
	if c.State != nil {
		clone.State = make(map[string]any, len(c.State))
		for k, v := range c.State {
			clone.State[k] = v
		}
	}
	return clone
}

// CheckpointStore persists checkpoints keyed by composite thread identity.
// Get returns (nil, nil) when no checkpoint exists for the identity. The
// orchestration core only reads existence; Append is called exclusively by
// the execution collaborator.
type CheckpointStore interface {
	Get(ctx context.Context, id ThreadIdentity) (*Checkpoint, error)
	Append(ctx context.Context, id ThreadIdentity, messages ...Message) error
	MergeState(ctx context.Context, id ThreadIdentity, delta map[string]any) error
}

// SavedMessage is the persistence collaborator's receipt for a stored turn
// response.
type SavedMessage struct {
	ID       string       `json:"id"`
	ThreadID string       `json:"thread_id"`
	Role     string       `json:"role"`
	Content  string       `json:"content"`
	Trace    []TraceEntry `json:"trace,omitempty"`
	SavedAt  time.Time    `json:"saved_at"`
}

// MessageStore is the persistence collaborator. Exactly one Save happens per
// terminal turn; failures are fatal for the turn.
type MessageStore interface {
	Save(ctx context.Context, threadID, content, role string, trace []TraceEntry) (*SavedMessage, error)
}
