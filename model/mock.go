package model

import (
	"context"
	"fmt"
	"sync"
)

// MockModel is a deterministic in-memory Model for tests and examples. It
// replays scripted responses in order; once the script is exhausted it
// echoes the last user turn.
type MockModel struct {
	mu       sync.Mutex
	info     Info
	script   []Response
	requests []Request
	err      error
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{Name: name, Provider: "mock", SupportsTools: true},
	}
}

// Enqueue appends scripted responses replayed by subsequent Generate calls.
func (m *MockModel) Enqueue(responses ...Response) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
	return m
}

// Fail makes every subsequent Generate call return err.
func (m *MockModel) Fail(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Requests returns the requests observed so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Model.
func (m *MockModel) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		resp := m.script[0]
		m.script = m.script[1:]
		return &resp, nil
	}

	last := ""
	for i := len(req.Turns) - 1; i >= 0; i-- {
		if req.Turns[i].Role == "user" {
			last = req.Turns[i].Content
			break
		}
	}
	return &Response{Text: fmt.Sprintf("mock response to: %s", last), FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
