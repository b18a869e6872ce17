package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/registry"
	"github.com/loreweave/loreweave/telemetry"
)

// Shared test doubles for extractor and fallback tests.

// resolverSet is a ModelResolver backed by a name set.
type resolverSet map[string]bool

func (r resolverSet) Has(name string) bool { return r[name] }

// stubExecutor replays a scripted InvokeResult (or error) per agent name and
// records every invocation.
type stubExecutor struct {
	results map[string]*core.InvokeResult
	errs    map[string]error
	calls   []invocation
}

type invocation struct {
	agent    string
	messages []core.Message
}

func (s *stubExecutor) Invoke(_ context.Context, agent *core.AgentDefinition, messages []core.Message, _ core.ThreadIdentity) (*core.InvokeResult, error) {
	s.calls = append(s.calls, invocation{agent: agent.Name, messages: messages})
	if err := s.errs[agent.Name]; err != nil {
		return nil, err
	}
	if res := s.results[agent.Name]; res != nil {
		return res, nil
	}
	return nil, errors.New("no scripted result for " + agent.Name)
}

func (s *stubExecutor) script(agent string, res *core.InvokeResult) *stubExecutor {
	if s.results == nil {
		s.results = map[string]*core.InvokeResult{}
	}
	s.results[agent] = res
	return s
}

func (s *stubExecutor) fail(agent string, err error) *stubExecutor {
	if s.errs == nil {
		s.errs = map[string]error{}
	}
	s.errs[agent] = err
	return s
}

// replyResult builds an InvokeResult carrying a single assistant reply.
func replyResult(agent, reply string) *core.InvokeResult {
	return &core.InvokeResult{
		Messages: []core.Message{core.NewMessage(core.RoleAssistant, agent, reply)},
	}
}

// routedResult builds an InvokeResult whose transcript carries a successful
// routing tool output plus an assistant reply.
func routedResult(agent, payload, reply string) *core.InvokeResult {
	res := replyResult(agent, reply)
	res.ToolResults = []core.ToolResult{{
		CallID: "route-1",
		Name:   ToolName,
		Output: payload,
	}}
	return res
}

// testRegistry builds dispatcher / narrator (default) / target-agent /
// cheapest agents.
func testRegistry(t *testing.T) *registry.Static {
	t.Helper()
	reg, err := registry.New([]*core.AgentDefinition{
		{Name: "dispatch", Model: "router-model", Mode: core.RouterModeHandoff},
		{Name: "narrator", Model: "narrator-model"},
		{Name: "target-agent", Model: "target-model"},
		{Name: "cheapest", Model: "cheap-model"},
	}, "narrator")
	require.NoError(t, err)
	return reg
}

func routingIdentity() core.ThreadIdentity {
	return core.ThreadIdentity{
		UserID:     "user-1",
		ThreadID:   "thread-1",
		CampaignID: "campaign-1",
		AgentScope: "dispatch",
	}
}

// sinkRecorder collects telemetry records for assertions.
type sinkRecorder struct {
	records []telemetry.Record
}

func (s *sinkRecorder) Record(rec telemetry.Record) { s.records = append(s.records, rec) }

func allModels() resolverSet {
	return resolverSet{
		"router-model":   true,
		"narrator-model": true,
		"target-model":   true,
		"cheap-model":    true,
	}
}
