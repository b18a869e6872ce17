package routing

import (
	"context"
	"time"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/logging"
	"github.com/loreweave/loreweave/telemetry"
)

// Extractor invokes a router agent and parses its routing tool output into a
// typed decision. Each Extract pass ends in exactly one of three outcomes:
//
//   - success: a full decision with resolved target and fallback agents
//   - no-decision: the router answered but produced no usable decision
//   - failed: no router was available or the invocation errored; recovery
//     runs through the Fallback executor
//
// All three advance the turn's routing attempt counter by exactly one and
// produce a Metadata. Extraction errors never escape this component.
type Extractor struct {
	registry core.Registry
	exec     core.Executor
	models   ModelResolver
	fallback *Fallback
	sink     telemetry.Sink
	logger   logging.Logger
}

// NewExtractor constructs an Extractor wired to its fallback recovery path.
func NewExtractor(
	reg core.Registry,
	exec core.Executor,
	models ModelResolver,
	fallback *Fallback,
	sink telemetry.Sink,
	logger logging.Logger,
) *Extractor {
	return &Extractor{
		registry: reg,
		exec:     exec,
		models:   models,
		fallback: fallback,
		sink:     telemetry.OrNop(sink),
		logger:   logging.OrNoOp(logger),
	}
}

// Extract runs one routing pass for router over messages. The router's own
// direct reply and tool transcript are always captured into state so a
// no-decision pass can still terminate the hop with the agent's reply.
func (e *Extractor) Extract(
	ctx context.Context,
	router *core.AgentDefinition,
	messages []core.Message,
	identity core.ThreadIdentity,
	state *TurnState,
) Metadata {
	start := time.Now()

	if router == nil {
		e.logger.Warn("extractor.router.unavailable", "thread", identity.Key())
		return e.fallback.Run(ctx, nil, messages, identity, state)
	}
	if !e.models.Has(router.Model) {
		e.logger.Warn("extractor.model.unresolvable",
			"thread", identity.Key(),
			"agent", router.Name,
			"model", router.Model,
		)
		return e.fallback.Run(ctx, nil, messages, identity, state)
	}

	res, err := e.exec.Invoke(ctx, router, messages, identity)
	if err != nil {
		e.logger.Error("extractor.invocation.failed",
			"thread", identity.Key(),
			"agent", router.Name,
			"error", err.Error(),
		)
		return e.fallback.Run(ctx, nil, messages, identity, state)
	}

	state.Capture(res)

	raw, found := routingToolOutput(res.ToolResults)
	if !found {
		return e.noDecision(identity, router.Name, start, state, "router emitted no routing tool call")
	}

	payload, err := parsePayload(raw)
	if err != nil {
		return e.noDecision(identity, router.Name, start, state, err.Error())
	}

	target, ok := e.registry.Agent(payload.TargetAgent)
	if !ok {
		return e.noDecision(identity, router.Name, start, state, "target agent "+payload.TargetAgent+" not registered")
	}

	// An empty fallback name always substitutes the fixed default agent; it
	// is never treated as absent. A non-empty name must resolve.
	fallbackName := payload.FallbackAgent
	if fallbackName == "" {
		fallbackName = e.registry.Default().Name
	} else if _, ok := e.registry.Agent(fallbackName); !ok {
		return e.noDecision(identity, router.Name, start, state, "fallback agent "+payload.FallbackAgent+" not registered")
	}

	decision := &Decision{
		TargetAgent:    target.Name,
		Confidence:     clampConfidence(payload.Confidence),
		Reasoning:      payload.Reasoning,
		FallbackAgent:  fallbackName,
		IntentKeywords: payload.IntentKeywords,
		ContextFactors: payload.ContextFactors,
		Timestamp:      time.Now().UTC(),
		Version:        Version,
	}

	state.RoutingAttempts++
	md := Metadata{
		Decision:      decision,
		ExecutionTime: time.Since(start),
		Success:       true,
		FallbackUsed:  false,
	}
	state.Metadata = md

	e.logger.Info("extractor.decision.parsed",
		"thread", identity.Key(),
		"router", router.Name,
		"target", decision.TargetAgent,
		"confidence", decision.Confidence,
		"fallback", decision.FallbackAgent,
	)
	e.sink.Record(telemetry.Record{
		Kind:     telemetry.KindRouting,
		Identity: identity,
		Agent:    router.Name,
		Outcome:  telemetry.OutcomeSuccess,
		Success:  true,
	})

	return md
}

// noDecision finalizes the pass without a decision: success=false,
// fallbackUsed=false, attempt counter advanced once.
func (e *Extractor) noDecision(
	identity core.ThreadIdentity,
	router string,
	start time.Time,
	state *TurnState,
	reason string,
) Metadata {
	state.RoutingAttempts++
	md := Metadata{
		ExecutionTime: time.Since(start),
		Success:       false,
		FallbackUsed:  false,
	}
	state.Metadata = md

	e.logger.Warn("extractor.no_decision",
		"thread", identity.Key(),
		"router", router,
		"reason", reason,
	)
	e.sink.Record(telemetry.Record{
		Kind:     telemetry.KindRouting,
		Identity: identity,
		Agent:    router,
		Outcome:  telemetry.OutcomeNoDecision,
	})

	return md
}

// routingToolOutput scans the transcript for the designated routing tool's
// successful output, preferring the last occurrence.
func routingToolOutput(results []core.ToolResult) (string, bool) {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Name == ToolName && results[i].Error == "" {
			return results[i].Output, true
		}
	}
	return "", false
}
