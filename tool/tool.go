// Package tool implements the function-calling subsystem: the Tool contract,
// a schema-validated function adapter, the designated routing tool whose
// output carries routing decisions, and a name-indexed tool registry.
package tool

import (
	"context"
	"fmt"
	"sync"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/logging"
)

// Context carries per-call collaborators into a tool invocation. Tools emit
// their own per-call progress events through Events; the aggregated
// tools-used notice is the runner's job.
type Context struct {
	Ctx      context.Context
	Identity core.ThreadIdentity
	CallID   string
	Logger   logging.Logger
	Events   core.EventSink

	stateDelta map[string]any
}

// SetState records a thread-state mutation. The execution collaborator
// merges accumulated deltas into the checkpoint after the call completes.
func (tc *Context) SetState(key string, value any) {
	if tc.stateDelta == nil {
		tc.stateDelta = map[string]any{}
	}
	tc.stateDelta[key] = value
}

// StateDelta returns the mutations recorded through SetState, or nil.
func (tc *Context) StateDelta() map[string]any {
	return tc.stateDelta
}

// ctxLogger returns the call's logger, substituting a no-op when absent.
func ctxLogger(tc *Context) logging.Logger {
	if tc == nil {
		return logging.NoOpLogger{}
	}
	return logging.OrNoOp(tc.Logger)
}

// Tool is a structured capability an agent can invoke during a turn.
//
// Implementations should provide descriptive names (snake_case), define a
// minimal JSON-schema parameter object, and be safe for concurrent use.
type Tool interface {
	// Name returns the unique tool identifier used in model declarations.
	Name() string

	// Description is surfaced to the model to guide tool selection.
	Description() string

	// Parameters returns a JSON-schema object describing accepted arguments.
	Parameters() map[string]any

	// Call executes the tool with already-decoded arguments.
	Call(tc *Context, args map[string]any) (any, error)
}

// Error wraps tool execution failures with a stable code for downstream
// categorization.
type Error struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Registry is a concurrency-safe name index of tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry constructs an empty tool registry.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register binds the tool under its name, replacing any previous binding.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Lookup returns the tool registered under name and whether it exists.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}
