package routing

import (
	"context"
	"time"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/logging"
	"github.com/loreweave/loreweave/telemetry"
)

// ModelResolver answers whether an agent's declared model can be resolved to
// an implementation. The execution collaborator's model registry satisfies it.
type ModelResolver interface {
	Has(name string) bool
}

// Fallback re-invokes a recovery agent when routing is unavailable or a
// routing pass failed. Its own failures never propagate: the turn degrades
// to the fixed apology response instead.
type Fallback struct {
	registry core.Registry
	exec     core.Executor
	models   ModelResolver
	sink     telemetry.Sink
	logger   logging.Logger
}

// NewFallback constructs a Fallback executor.
func NewFallback(reg core.Registry, exec core.Executor, models ModelResolver, sink telemetry.Sink, logger logging.Logger) *Fallback {
	return &Fallback{
		registry: reg,
		exec:     exec,
		models:   models,
		sink:     telemetry.OrNop(sink),
		logger:   logging.OrNoOp(logger),
	}
}

// Run resolves the fallback target (the prior decision's fallback agent when
// it resolves, else the fixed default agent) and re-invokes it with the
// original messages. The routing attempt counter advances exactly once, and
// the returned metadata always carries success=false with fallbackUsed=true.
func (f *Fallback) Run(
	ctx context.Context,
	prior *Decision,
	messages []core.Message,
	identity core.ThreadIdentity,
	state *TurnState,
) Metadata {
	start := time.Now()

	target := f.registry.Default()
	if prior != nil && prior.FallbackAgent != "" {
		if def, ok := f.registry.Agent(prior.FallbackAgent); ok {
			target = def
		}
	}

	decision := prior
	if decision == nil {
		decision = &Decision{
			TargetAgent:   target.Name,
			Confidence:    SentinelConfidence,
			Reasoning:     "routing unavailable; falling back to default agent",
			FallbackAgent: target.Name,
			Timestamp:     time.Now().UTC(),
			Version:       Version,
		}
	}

	if !f.models.Has(target.Model) {
		return f.fail(identity, target.Name, decision, start, state, "model unresolvable")
	}

	res, err := f.exec.Invoke(ctx, target, messages, identity)
	if err != nil {
		return f.fail(identity, target.Name, decision, start, state, err.Error())
	}

	state.Routed = true
	state.Capture(res)
	state.Merge(res.State)
	state.RoutingAttempts++

	// The turn recovered, but a routing stage already reported failure.
	// Recovery never upgrades success back to true.
	md := Metadata{
		Decision:      decision,
		ExecutionTime: time.Since(start),
		Success:       false,
		FallbackUsed:  true,
	}
	state.Metadata = md

	f.logger.Info("fallback.execution.succeeded",
		"thread", identity.Key(),
		"agent", target.Name,
		"attempts", state.RoutingAttempts,
	)
	f.record(identity, md)

	return md
}

// fail records the non-propagating failure branch: the apology becomes the
// response, the attempt counter still advances, and the error is logged once
// with its identity context.
func (f *Fallback) fail(
	identity core.ThreadIdentity,
	agent string,
	decision *Decision,
	start time.Time,
	state *TurnState,
	reason string,
) Metadata {
	state.Response = Apology
	state.RoutingAttempts++

	md := Metadata{
		Decision:      decision,
		ExecutionTime: time.Since(start),
		Success:       false,
		FallbackUsed:  true,
	}
	state.Metadata = md

	f.logger.Error("fallback.execution.failed",
		"thread", identity.Key(),
		"user", identity.UserID,
		"campaign", identity.CampaignID,
		"agent", agent,
		"reason", reason,
	)
	f.record(identity, md)

	return md
}

func (f *Fallback) record(identity core.ThreadIdentity, md Metadata) {
	f.sink.Record(telemetry.Record{
		Kind:         telemetry.KindRouting,
		Identity:     identity,
		Outcome:      telemetry.OutcomeFailed,
		Success:      md.Success,
		FallbackUsed: md.FallbackUsed,
	})
}
