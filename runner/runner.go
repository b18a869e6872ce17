package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/logging"
	"github.com/loreweave/loreweave/routing"
	"github.com/loreweave/loreweave/telemetry"
)

// ErrTurnFailed is the only error RunTurn returns. Internals are logged with
// full identity context; callers get a stable, user-safe sentinel.
var ErrTurnFailed = errors.New("turn processing failed")

// DefaultMaxHops bounds the handoff chain per turn.
const DefaultMaxHops = 4

const tracerName = "github.com/loreweave/loreweave/runner"

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// MaxHops caps handoffs per turn; defaults to DefaultMaxHops.
	MaxHops int
	// Telemetry receives turn and anomaly records; defaults to no-op.
	Telemetry telemetry.Sink
	// Logger receives structured orchestration logs; defaults to no-op.
	Logger logging.Logger
	// Events is the default sink when a TurnRequest supplies none.
	Events core.EventSink
}

// TurnRequest describes one user turn to process.
type TurnRequest struct {
	// Identity addresses the persisted conversational state; it is passed
	// through every hop unchanged.
	Identity core.ThreadIdentity
	// RunID labels the turn in logs and events; generated when empty.
	RunID string
	// Agent names the entry agent; the registry default is used when empty.
	Agent string
	// History is the caller's view of the conversation, newest message last.
	// When a checkpoint already exists only the newest message is submitted.
	History []core.Message
	// Events optionally overrides the runner's event sink for this turn.
	Events core.EventSink
}

// TurnResult is the completed turn: the response text, the persistence
// receipt, and the routing outcome.
type TurnResult struct {
	Response string
	Saved    *core.SavedMessage
	Metadata routing.Metadata
	State    *routing.TurnState
	Agent    string
	Hops     int
}

// Runner orchestrates one turn at a time across the agent registry: routing
// passes for handoff-mode agents, direct invocation otherwise, bounded by
// the hop budget. Safe for concurrent use; per-turn state is local.
type Runner struct {
	registry    core.Registry
	exec        core.Executor
	checkpoints core.CheckpointStore
	messages    core.MessageStore
	extractor   *routing.Extractor
	fallback    *routing.Fallback
	maxHops     int
	sink        telemetry.Sink
	logger      logging.Logger
	events      core.EventSink
}

// New constructs a Runner over the given collaborators. The checkpoint store
// is only read here, to gate history submission; writes stay with the
// execution collaborator.
func New(
	reg core.Registry,
	exec core.Executor,
	models routing.ModelResolver,
	checkpoints core.CheckpointStore,
	messages core.MessageStore,
	optFns ...func(o *Options),
) *Runner {
	opts := Options{
		MaxHops:   DefaultMaxHops,
		Telemetry: telemetry.NopSink{},
		Logger:    logging.NoOpLogger{},
		Events:    core.NopEventSink{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxHops <= 0 {
		opts.MaxHops = DefaultMaxHops
	}

	sink := telemetry.OrNop(opts.Telemetry)
	logger := logging.OrNoOp(opts.Logger)
	fallback := routing.NewFallback(reg, exec, models, sink, logger)

	return &Runner{
		registry:    reg,
		exec:        exec,
		checkpoints: checkpoints,
		messages:    messages,
		extractor:   routing.NewExtractor(reg, exec, models, fallback, sink, logger),
		fallback:    fallback,
		maxHops:     opts.MaxHops,
		sink:        sink,
		logger:      logger,
		events:      opts.Events,
	}
}

// hopOutcome tags the result of one hop: continue to a named target, or the
// turn is terminal.
type hopOutcome interface{ isHopOutcome() }

type hopContinue struct{ target *core.AgentDefinition }

type hopTerminal struct{}

func (hopContinue) isHopOutcome() {}
func (hopTerminal) isHopOutcome() {}

// turnContext is the per-turn mutable bundle threaded through the hop loop.
type turnContext struct {
	req    TurnRequest
	state  *routing.TurnState
	events core.EventSink
	trace  []core.TraceEntry
	agent  *core.AgentDefinition
	hops   int
}

// RunTurn processes one user turn to completion: it resolves the entry
// agent, runs the bounded hop loop, validates the outcome, persists exactly
// one message carrying the trace, and emits exactly one final event. Any
// unrecoverable failure is logged with full identity context and surfaced
// as ErrTurnFailed.
func (r *Runner) RunTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	start := time.Now()

	if req.RunID == "" {
		req.RunID = core.NewID()
	}
	events := req.Events
	if events == nil {
		events = r.events
	}

	agent, ok := r.entryAgent(req.Agent)
	if !ok {
		r.logFailure(req, "entry agent not registered", req.Agent)
		events.Emit(core.NewEvent(core.EventError, "", "Something went wrong while processing your message."))
		return nil, ErrTurnFailed
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "runner.turn", oteltrace.WithAttributes(
		attribute.String("run.id", req.RunID),
		attribute.String("thread.id", req.Identity.ThreadID),
		attribute.String("agent.entry", agent.Name),
	))
	defer span.End()

	messages, err := r.gateHistory(ctx, req)
	if err != nil {
		r.logFailure(req, "checkpoint lookup failed", err.Error())
		events.Emit(core.NewEvent(core.EventError, "", "Something went wrong while processing your message."))
		return nil, ErrTurnFailed
	}

	tc := &turnContext{
		req:    req,
		state:  routing.NewTurnState(),
		events: events,
		agent:  agent,
	}

	banner := fmt.Sprintf("turn %s started: user=%s thread=%s campaign=%s agent=%s",
		req.RunID, req.Identity.UserID, req.Identity.ThreadID, req.Identity.CampaignID, agent.Name)
	events.Emit(core.NewEvent(core.EventDebug, agent.Name, banner))
	tc.trace = append(tc.trace, core.TraceEntry{Kind: core.EventDebug, Agent: agent.Name, Summary: banner})

	for hop := 1; hop <= r.maxHops; hop++ {
		tc.hops = hop

		outcome := r.runHop(ctx, tc, messages)
		if next, ok := outcome.(hopContinue); ok {
			tc.agent = next.target
			messages = nil
			continue
		}
		return r.finish(ctx, tc, start)
	}

	// Hop budget exhausted: record the anomaly and degrade through the
	// fallback path so the user still gets an answer. The last successful
	// decision chooses the recovery agent when it names one.
	r.anomaly(tc, fmt.Sprintf("hop budget of %d exhausted at agent %s", r.maxHops, tc.agent.Name))
	r.fallback.Run(ctx, tc.state.Metadata.Decision, nil, req.Identity, tc.state)
	return r.finish(ctx, tc, start)
}

// runHop executes one hop for the current agent and classifies the result.
func (r *Runner) runHop(ctx context.Context, tc *turnContext, messages []core.Message) hopOutcome {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "runner.hop", oteltrace.WithAttributes(
		attribute.Int("hop", tc.hops),
		attribute.String("agent", tc.agent.Name),
		attribute.String("agent.mode", tc.agent.Mode.String()),
	))
	defer span.End()

	if tc.agent.Mode == core.RouterModeHandoff {
		return r.routeHop(ctx, tc, messages)
	}
	return r.directHop(ctx, tc, messages)
}

// routeHop runs one routing pass for a handoff-mode agent.
func (r *Runner) routeHop(ctx context.Context, tc *turnContext, messages []core.Message) hopOutcome {
	md := r.extractor.Extract(ctx, tc.agent, messages, tc.req.Identity, tc.state)

	switch {
	case md.Success && !md.FallbackUsed:
		target, ok := r.registry.Agent(md.Decision.TargetAgent)
		if !ok {
			// The extractor resolved this name already; a miss here means
			// the registry changed underneath us.
			r.anomaly(tc, fmt.Sprintf("routed target %s vanished from registry", md.Decision.TargetAgent))
			return hopTerminal{}
		}
		notice := fmt.Sprintf("%s handed off to %s: %s", tc.agent.Name, target.Name, md.Decision.Reasoning)
		tc.events.Emit(core.NewEvent(core.EventRouting, tc.agent.Name, notice))
		tc.trace = append(tc.trace, core.TraceEntry{Kind: core.EventRouting, Agent: target.Name, Summary: notice})
		return hopContinue{target: target}

	case md.FallbackUsed:
		return hopTerminal{}

	default:
		// No decision: the router's own reply stands as the turn response.
		r.anomaly(tc, fmt.Sprintf("router %s produced no routing decision", tc.agent.Name))
		return hopTerminal{}
	}
}

// directHop invokes a none- or controller-mode agent. Invocation failures
// degrade through the fallback path instead of propagating.
func (r *Runner) directHop(ctx context.Context, tc *turnContext, messages []core.Message) hopOutcome {
	start := time.Now()

	res, err := r.exec.Invoke(ctx, tc.agent, messages, tc.req.Identity)
	if err != nil {
		r.logger.Error("runner.invocation.failed",
			"run", tc.req.RunID,
			"thread", tc.req.Identity.Key(),
			"agent", tc.agent.Name,
			"error", err.Error(),
		)
		r.fallback.Run(ctx, nil, messages, tc.req.Identity, tc.state)
		return hopTerminal{}
	}

	tc.state.Capture(res)
	tc.state.Merge(res.State)
	tc.state.Routed = true
	tc.state.Metadata = routing.Metadata{
		Decision:      tc.state.Metadata.Decision,
		ExecutionTime: time.Since(start),
		Success:       true,
		FallbackUsed:  tc.state.Metadata.FallbackUsed,
	}
	return hopTerminal{}
}

// finish validates the outcome, persists the single turn message with its
// trace, and emits the final event.
func (r *Runner) finish(ctx context.Context, tc *turnContext, start time.Time) (*TurnResult, error) {
	md := routing.Validate(tc.state.Metadata, tc.state.Response)
	tc.state.Metadata = md

	if names := tc.state.ToolNames(); len(names) > 0 {
		notice := fmt.Sprintf("tools used: %s", strings.Join(names, ", "))
		tc.events.Emit(core.NewEvent(core.EventToolUsage, tc.agent.Name, notice))
		tc.trace = append(tc.trace, core.TraceEntry{Kind: core.EventToolUsage, Agent: tc.agent.Name, Summary: notice})
	}

	saved, err := r.messages.Save(ctx, tc.req.Identity.ThreadID, tc.state.Response, core.RoleAssistant, tc.trace)
	if err != nil {
		r.logFailure(tc.req, "message persistence failed", err.Error())
		tc.events.Emit(core.NewEvent(core.EventError, tc.agent.Name, "Something went wrong while processing your message."))
		return nil, ErrTurnFailed
	}

	tc.events.Emit(core.NewEvent(core.EventFinal, tc.agent.Name, tc.state.Response))

	r.sink.Record(telemetry.Record{
		Kind:         telemetry.KindTurn,
		Identity:     tc.req.Identity,
		Agent:        tc.agent.Name,
		Outcome:      turnOutcome(md),
		Success:      md.Success,
		FallbackUsed: md.FallbackUsed,
		Attempts:     tc.state.RoutingAttempts,
		Hops:         tc.hops,
		Duration:     time.Since(start),
	})
	r.logger.Info("runner.turn.completed",
		"run", tc.req.RunID,
		"thread", tc.req.Identity.Key(),
		"agent", tc.agent.Name,
		"hops", tc.hops,
		"attempts", tc.state.RoutingAttempts,
		"success", md.Success,
		"fallback_used", md.FallbackUsed,
	)

	return &TurnResult{
		Response: tc.state.Response,
		Saved:    saved,
		Metadata: md,
		State:    tc.state,
		Agent:    tc.agent.Name,
		Hops:     tc.hops,
	}, nil
}

// gateHistory decides what to submit on the first hop: the full history when
// no checkpoint exists yet, otherwise only the newest user message. Earlier
// turns already live in the checkpoint, so resubmitting them would duplicate
// the context.
func (r *Runner) gateHistory(ctx context.Context, req TurnRequest) ([]core.Message, error) {
	cp, err := r.checkpoints.Get(ctx, req.Identity)
	if err != nil {
		return nil, err
	}
	if cp == nil || len(req.History) == 0 {
		return req.History, nil
	}
	if last, ok := core.LastUserMessage(req.History); ok {
		return []core.Message{last}, nil
	}
	return req.History[len(req.History)-1:], nil
}

// entryAgent resolves the requested entry agent, defaulting when unnamed.
func (r *Runner) entryAgent(name string) (*core.AgentDefinition, bool) {
	if name == "" {
		return r.registry.Default(), true
	}
	return r.registry.Agent(name)
}

// anomaly emits the anomaly event and telemetry record for a recoverable
// oddity observed mid-turn.
func (r *Runner) anomaly(tc *turnContext, summary string) {
	tc.events.Emit(core.NewEvent(core.EventAnomaly, tc.agent.Name, summary))
	r.sink.Record(telemetry.Record{
		Kind:     telemetry.KindAnomaly,
		Identity: tc.req.Identity,
		Agent:    tc.agent.Name,
	})
	r.logger.Warn("runner.anomaly",
		"run", tc.req.RunID,
		"thread", tc.req.Identity.Key(),
		"agent", tc.agent.Name,
		"summary", summary,
	)
}

// logFailure records an unrecoverable turn failure with full identity
// context before the generic error is surfaced.
func (r *Runner) logFailure(req TurnRequest, what, detail string) {
	r.logger.Error("runner.turn.failed",
		"run", req.RunID,
		"user", req.Identity.UserID,
		"thread", req.Identity.ThreadID,
		"campaign", req.Identity.CampaignID,
		"scope", req.Identity.AgentScope,
		"what", what,
		"detail", detail,
	)
}

func turnOutcome(md routing.Metadata) string {
	switch {
	case md.Success:
		return telemetry.OutcomeSuccess
	case md.FallbackUsed:
		return telemetry.OutcomeFailed
	default:
		return telemetry.OutcomeNoDecision
	}
}
