package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/logging"
	"github.com/loreweave/loreweave/model"
	"github.com/loreweave/loreweave/tool"
)

// defaultMaxToolRounds bounds the model/tool exchange per invocation.
const defaultMaxToolRounds = 8

// Options configures a ModelExecutor.
type Options struct {
	// MaxToolRounds caps model/tool rounds per invocation; defaults to 8.
	MaxToolRounds int
	// Logger receives structured execution logs; defaults to no-op.
	Logger logging.Logger
	// Events receives per-call progress events emitted by tools.
	Events core.EventSink
}

// ModelExecutor is the tool-enabled implementation of core.Executor. It
// resolves the agent's model by name, replays checkpoint history for
// context, runs a bounded model/tool round loop, and appends the resulting
// exchange to the checkpoint store.
type ModelExecutor struct {
	models      *model.Registry
	tools       *tool.Registry
	agents      core.Registry
	checkpoints core.CheckpointStore
	maxRounds   int
	logger      logging.Logger
	events      core.EventSink
}

// NewModelExecutor wires an executor over the given registries and
// checkpoint store. The agents registry is consulted to synthesize
// sub-agent tools for controller-mode agents.
func NewModelExecutor(models *model.Registry, tools *tool.Registry, agents core.Registry, checkpoints core.CheckpointStore, optFns ...func(o *Options)) *ModelExecutor {
	opts := Options{
		MaxToolRounds: defaultMaxToolRounds,
		Logger:        logging.NoOpLogger{},
		Events:        core.NopEventSink{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = defaultMaxToolRounds
	}
	return &ModelExecutor{
		models:      models,
		tools:       tools,
		agents:      agents,
		checkpoints: checkpoints,
		maxRounds:   opts.MaxToolRounds,
		logger:      logging.OrNoOp(opts.Logger),
		events:      opts.Events,
	}
}

// Invoke runs one agent invocation and returns the produced messages and
// tool transcript. Checkpoint history for the identity, when present, is
// replayed ahead of the submitted messages.
func (e *ModelExecutor) Invoke(ctx context.Context, agent *core.AgentDefinition, messages []core.Message, identity core.ThreadIdentity) (*core.InvokeResult, error) {
	m, ok := e.models.Lookup(agent.Model)
	if !ok {
		return nil, fmt.Errorf("exec: agent %q references unknown model %q", agent.Name, agent.Model)
	}

	cp, err := e.checkpoints.Get(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("exec: checkpoint load: %w", err)
	}

	toolset, err := e.toolset(agent)
	if err != nil {
		return nil, err
	}

	req := model.Request{
		Instructions: agent.Instructions,
		Turns:        historyTurns(cp, messages),
		Tools:        toolDefinitions(toolset),
	}

	res := &core.InvokeResult{}
	stateDelta := map[string]any{}

	for round := 0; round < e.maxRounds; round++ {
		resp, err := m.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("exec: model %q generate: %w", agent.Model, err)
		}

		if len(resp.ToolCalls) == 0 {
			res.Messages = append(res.Messages, core.NewMessage(core.RoleAssistant, agent.Name, resp.Text))
			if len(stateDelta) > 0 {
				res.State = stateDelta
			}
			if err := e.persist(ctx, identity, messages, res, stateDelta); err != nil {
				return nil, err
			}
			return res, nil
		}

		req.Turns = append(req.Turns, model.Turn{
			Role:      core.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		if resp.Text != "" {
			res.Messages = append(res.Messages, core.NewMessage(core.RoleAssistant, agent.Name, resp.Text))
		}

		for _, call := range resp.ToolCalls {
			tr := e.execute(ctx, agent, toolset, call, identity, stateDelta)
			res.ToolResults = append(res.ToolResults, tr)

			output := tr.Output
			if tr.Error != "" {
				output = tr.Error
			}
			req.Turns = append(req.Turns, model.Turn{
				Role:       core.RoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
			res.Messages = append(res.Messages, core.NewMessage(core.RoleTool, agent.Name, output))
		}
	}

	return nil, fmt.Errorf("exec: agent %q exceeded %d tool rounds", agent.Name, e.maxRounds)
}

// execute runs a single tool call and records the result. Tool failures are
// captured in the transcript rather than aborting the invocation so the
// model can react to them.
func (e *ModelExecutor) execute(ctx context.Context, agent *core.AgentDefinition, toolset map[string]tool.Tool, call model.ToolCall, identity core.ThreadIdentity, stateDelta map[string]any) core.ToolResult {
	tr := core.ToolResult{CallID: call.ID, Name: call.Name, Arguments: call.Arguments}

	t, ok := toolset[call.Name]
	if !ok {
		tr.Error = fmt.Sprintf("unknown tool %q", call.Name)
		return tr
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			tr.Error = fmt.Sprintf("invalid arguments for %q: %v", call.Name, err)
			return tr
		}
	}

	tc := &tool.Context{
		Ctx:      ctx,
		Identity: identity,
		CallID:   call.ID,
		Logger:   e.logger,
		Events:   e.events,
	}

	start := time.Now()
	out, err := t.Call(tc, args)
	e.logger.Debug("exec.tool.executed",
		"agent", agent.Name,
		"tool", call.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	if err != nil {
		tr.Error = err.Error()
		return tr
	}
	for k, v := range tc.StateDelta() {
		stateDelta[k] = v
	}

	tr.Output = stringify(out)
	return tr
}

// persist appends the invocation exchange to the checkpoint store. The
// submitted messages and the produced messages together form the exchange.
func (e *ModelExecutor) persist(ctx context.Context, identity core.ThreadIdentity, submitted []core.Message, res *core.InvokeResult, stateDelta map[string]any) error {
	exchange := make([]core.Message, 0, len(submitted)+len(res.Messages))
	exchange = append(exchange, submitted...)
	exchange = append(exchange, res.Messages...)

	if err := e.checkpoints.Append(ctx, identity, exchange...); err != nil {
		return fmt.Errorf("exec: checkpoint append: %w", err)
	}
	if len(stateDelta) > 0 {
		if err := e.checkpoints.MergeState(ctx, identity, stateDelta); err != nil {
			return fmt.Errorf("exec: checkpoint state merge: %w", err)
		}
	}
	return nil
}

// toolset resolves the agent's declared tools and, for controller-mode
// agents, synthesizes an ask_<name> tool per sub-agent.
func (e *ModelExecutor) toolset(agent *core.AgentDefinition) (map[string]tool.Tool, error) {
	toolset := make(map[string]tool.Tool, len(agent.Tools)+len(agent.SubAgents))

	for _, name := range agent.Tools {
		t, ok := e.tools.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("exec: agent %q declares unknown tool %q", agent.Name, name)
		}
		toolset[name] = t
	}

	if agent.Mode == core.RouterModeController && e.agents != nil {
		for _, name := range agent.SubAgents {
			sub, ok := e.agents.Agent(name)
			if !ok {
				return nil, fmt.Errorf("exec: agent %q declares unknown sub-agent %q", agent.Name, name)
			}
			st := &subAgentTool{exec: e, agent: sub}
			toolset[st.Name()] = st
		}
	}

	return toolset, nil
}

// historyTurns converts checkpoint history plus the submitted messages into
// model turns. Tool-role checkpoint messages are skipped: their outcomes are
// already reflected in the assistant replies that followed them.
func historyTurns(cp *core.Checkpoint, messages []core.Message) []model.Turn {
	var prior []core.Message
	if cp != nil {
		prior = cp.Messages
	}

	turns := make([]model.Turn, 0, len(prior)+len(messages))
	for _, msg := range prior {
		if msg.Role == core.RoleTool {
			continue
		}
		turns = append(turns, model.Turn{Role: msg.Role, Content: msg.Content})
	}
	for _, msg := range messages {
		turns = append(turns, model.Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

func toolDefinitions(toolset map[string]tool.Tool) []model.ToolDefinition {
	if len(toolset) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(toolset))
	for _, t := range toolset {
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

func stringify(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
