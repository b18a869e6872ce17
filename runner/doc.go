// Package runner implements the handoff orchestrator: it drives the bounded
// hop loop for one turn, delegates routing passes to the routing package,
// persists exactly one message per turn, and surfaces a generic error when
// the turn cannot complete.
package runner
