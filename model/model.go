// Package model defines the provider-neutral language model contract used by
// the execution collaborator, plus a name-indexed model registry. Provider
// adapters live in the anthropic and openai sub-packages.
package model

import (
	"context"
	"sync"
)

// ToolCall is a function call request surfaced by a provider, unified so
// downstream logic needs no per-vendor branching.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON-encoded argument object
}

// ToolDefinition declaratively exposes a callable function to the model.
// Parameters is a minimal JSON Schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Turn is one conversational unit submitted to a provider. Assistant turns
// may carry ToolCalls; tool turns carry the result of the call identified by
// ToolCallID.
type Turn struct {
	Role       string     `json:"role"` // "user", "assistant", "tool"
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Request is the normalized model input.
type Request struct {
	Instructions string           `json:"instructions"`
	Turns        []Turn           `json:"turns"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Response is the provider's completed generation: reply text and any tool
// calls the model requested.
type Response struct {
	Text         string     `json:"text"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the execution collaborator drives.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Info() Info
}

// Registry maps the model names referenced by agent definitions to concrete
// implementations. It is safe for concurrent use; registrations normally all
// happen at process start.
type Registry struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewRegistry constructs an empty model registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model)}
}

// Register binds name to m, replacing any previous binding.
func (r *Registry) Register(name string, m Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[name] = m
}

// Lookup returns the model bound to name and whether it exists.
func (r *Registry) Lookup(name string) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Has reports whether name resolves to a registered model.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.models[name]
	return ok
}
