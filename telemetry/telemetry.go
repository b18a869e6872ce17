// Package telemetry defines the fire-and-forget metrics sink consumed by the
// analyzer, the routing layer and the runner, plus a Prometheus-backed
// collector. Sink failures are never allowed to affect turn processing.
package telemetry

import (
	"time"

	"github.com/loreweave/loreweave/core"
)

// Record kinds.
const (
	KindAnalysis = "analysis"
	KindRouting  = "routing"
	KindTurn     = "turn"
	KindAnomaly  = "anomaly"
)

// Routing outcomes reported on KindRouting records.
const (
	OutcomeSuccess    = "success"
	OutcomeNoDecision = "no_decision"
	OutcomeFailed     = "failed"
)

// Record is one telemetry datum. Only the fields relevant to the record's
// Kind are populated; sinks must tolerate zero values.
type Record struct {
	Kind         string
	Identity     core.ThreadIdentity
	Agent        string
	Siblings     []string
	MessageCount int
	Outcome      string
	Success      bool
	FallbackUsed bool
	Attempts     int
	Hops         int
	Duration     time.Duration
}

// Sink receives telemetry records. Implementations must be non-blocking and
// must never panic into callers; recording is fire-and-forget.
type Sink interface {
	Record(rec Record)
}

// NopSink discards all records.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(Record) {}

// FuncSink adapts a function to the Sink interface.
type FuncSink func(rec Record)

// Record implements Sink.
func (f FuncSink) Record(rec Record) { f(rec) }

// OrNop returns s if non-nil, otherwise a NopSink.
func OrNop(s Sink) Sink {
	if s == nil {
		return NopSink{}
	}
	return s
}
