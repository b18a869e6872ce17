// Package routing implements the routing-decision subsystem: extracting a
// typed decision from a router agent's tool output, recovering through the
// fallback executor when extraction is unavailable or fails, and the post-hoc
// response validator. Every extractor pass advances the turn's routing
// attempt counter by exactly one regardless of outcome.
package routing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ToolName is the designated routing tool whose output carries the decision
// payload. Router agents must declare it in their tool set.
const ToolName = "route_conversation"

// Version tags decisions with the routing schema revision.
const Version = "2"

// SentinelConfidence is the fixed confidence recorded on decisions
// synthesized by the fallback path when no router decision exists.
const SentinelConfidence = 1.0

// MaxConfidence bounds decision confidence; parsed values are clamped into
// [0, MaxConfidence].
const MaxConfidence = 5.0

// Apology is the fixed, non-technical response surfaced when even the
// fallback execution fails. No internal identifiers ever reach the user.
const Apology = "I'm sorry, I wasn't able to finish handling that request. Please try again in a moment."

// Decision is a typed routing decision produced per turn. It is never
// persisted verbatim; the runner consumes TargetAgent and the trace layer
// records a summary.
type Decision struct {
	TargetAgent    string    `json:"target_agent"`
	Confidence     float64   `json:"confidence"`
	Reasoning      string    `json:"reasoning"`
	FallbackAgent  string    `json:"fallback_agent"`
	IntentKeywords []string  `json:"intent_keywords,omitempty"`
	ContextFactors []string  `json:"context_factors,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
}

// Metadata wraps a decision with its extraction accounting. Success is never
// forced true after any stage reported failure; the validator can only
// downgrade it.
type Metadata struct {
	Decision      *Decision     `json:"decision,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
	Success       bool          `json:"success"`
	FallbackUsed  bool          `json:"fallback_used"`
	Satisfaction  *float64      `json:"satisfaction,omitempty"`
}

// ParseError reports malformed routing tool output. It never escapes the
// extraction boundary; the extractor degrades to a no-decision outcome.
type ParseError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("routing payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("routing payload: %s", e.Reason)
}

// Unwrap returns the wrapped cause.
func (e *ParseError) Unwrap() error { return e.Err }

// decisionPayload is the wire shape of the routing tool output.
type decisionPayload struct {
	TargetAgent    string   `json:"target_agent"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	FallbackAgent  string   `json:"fallback_agent"`
	IntentKeywords []string `json:"intent_keywords"`
	ContextFactors []string `json:"context_factors"`
}

// parsePayload decodes raw strictly: unknown fields are rejected and the
// target agent is required. Failures come back as *ParseError.
func parsePayload(raw string) (*decisionPayload, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var payload decisionPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, &ParseError{Reason: "malformed JSON", Err: err}
	}
	if payload.TargetAgent == "" {
		return nil, &ParseError{Reason: "missing required field target_agent"}
	}
	return &payload, nil
}

// clampConfidence forces a confidence value into [0, MaxConfidence].
func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > MaxConfidence:
		return MaxConfidence
	default:
		return c
	}
}
