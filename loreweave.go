// Package loreweave provides a high-level facade over the routing and
// handoff machinery for multi-agent narrative campaigns. Most applications
// interact with this package by:
//  1. Building an agent registry (by hand or from a config manifest)
//  2. Registering model implementations under the names agents reference
//  3. Creating a Loreweave via New() and processing turns with RunTurn
//
// The facade delegates orchestration to runner.Runner while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable checkpoint
// store, a real message store, a structured logger, and a telemetry sink.
package loreweave

import (
	"context"

	"github.com/loreweave/loreweave/analysis"
	"github.com/loreweave/loreweave/checkpoint"
	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/exec"
	"github.com/loreweave/loreweave/logging"
	"github.com/loreweave/loreweave/model"
	"github.com/loreweave/loreweave/runner"
	"github.com/loreweave/loreweave/telemetry"
	"github.com/loreweave/loreweave/tool"
)

// Options configures a Loreweave instance.
type Options struct {
	// Tools exposes callable capabilities to agents; the designated routing
	// tool is always registered.
	Tools *tool.Registry

	// CheckpointStore holds per-thread continuity state; defaults to the
	// in-memory implementation.
	CheckpointStore core.CheckpointStore

	// MessageStore persists the single turn response message; defaults to
	// the in-memory implementation.
	MessageStore core.MessageStore

	// MaxHops caps handoffs per turn; defaults to runner.DefaultMaxHops.
	MaxHops int

	// MaxToolRounds caps model/tool rounds per agent invocation.
	MaxToolRounds int

	// Telemetry receives analysis, routing, turn and anomaly records.
	Telemetry telemetry.Sink

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Events is the default event sink for turns that supply none.
	Events core.EventSink
}

// Loreweave is the high-level facade aggregating the orchestrator, the
// execution collaborator, and the conversation analyzer.
type Loreweave struct {
	registry core.Registry
	models   *model.Registry
	runner   *runner.Runner
	analyzer *analysis.Analyzer
}

// New creates a Loreweave over a validated agent registry and a model
// registry. Any unset store is initialized with an in-memory implementation.
func New(reg core.Registry, models *model.Registry, optFns ...func(o *Options)) *Loreweave {
	opts := Options{
		Tools:           tool.NewRegistry(),
		CheckpointStore: checkpoint.NewInMemoryStore(),
		MessageStore:    checkpoint.NewInMemoryMessageStore(),
		Telemetry:       telemetry.NopSink{},
		Logger:          logging.NoOpLogger{},
		Events:          core.NopEventSink{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Tools.Register(tool.NewRouteConversationTool())

	executor := exec.NewModelExecutor(models, opts.Tools, reg, opts.CheckpointStore, func(o *exec.Options) {
		o.MaxToolRounds = opts.MaxToolRounds
		o.Logger = opts.Logger
		o.Events = opts.Events
	})

	run := runner.New(reg, executor, models, opts.CheckpointStore, opts.MessageStore, func(o *runner.Options) {
		o.MaxHops = opts.MaxHops
		o.Telemetry = opts.Telemetry
		o.Logger = opts.Logger
		o.Events = opts.Events
	})

	return &Loreweave{
		registry: reg,
		models:   models,
		runner:   run,
		analyzer: analysis.NewAnalyzer(opts.Telemetry, opts.Logger),
	}
}

// RunTurn processes one user turn to completion.
func (l *Loreweave) RunTurn(ctx context.Context, req runner.TurnRequest) (*runner.TurnResult, error) {
	return l.runner.RunTurn(ctx, req)
}

// Analyze inspects recent conversation flow for an agent and its siblings.
func (l *Loreweave) Analyze(params analysis.Params) (*analysis.Result, error) {
	return l.analyzer.Analyze(params)
}

// Registry returns the agent registry the instance was built with.
func (l *Loreweave) Registry() core.Registry { return l.registry }

// Models returns the model registry the instance was built with.
func (l *Loreweave) Models() *model.Registry { return l.models }
