package analysis

import (
	"fmt"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/logging"
	"github.com/loreweave/loreweave/telemetry"
)

// Window bounds for the analyzed message slice.
const (
	MinWindow = 1
	MaxWindow = 10
)

// Recommendation text for the degenerate branches.
const (
	recommendNoSiblings = "no sub-agents available; continue with current agent"
	recommendNoHistory  = "no conversation history; continue with current agent"
)

// Params is the analyzer input: who is asking, which siblings are candidate
// routing targets, the recent messages, and the window size (last Window
// messages are considered).
type Params struct {
	Identity     core.ThreadIdentity
	CurrentAgent string
	Siblings     []*core.AgentDefinition
	Messages     []core.Message
	Window       int
}

// TopicShift marks a dominant-topic change between two consecutive messages.
type TopicShift struct {
	FromAgent string `json:"from_agent"`
	ToAgent   string `json:"to_agent"`
	Position  int    `json:"position"`
}

// Result is the analyzer output. TopicStability is in [0,1]: 1 means the
// window never changed dominant topic.
type Result struct {
	MessageCount   int          `json:"message_count"`
	DominantTopics []string     `json:"dominant_topics"`
	TopicShifts    []TopicShift `json:"topic_shifts"`
	TopicStability float64      `json:"topic_stability"`
	Patterns       []string     `json:"patterns"`
	Continuity     []string     `json:"continuity"`
	Recommendation string       `json:"recommendation"`
}

// Analyzer computes routing recommendations from recent conversation. Every
// Analyze call emits exactly one telemetry record; the analyzer has no other
// side effects.
type Analyzer struct {
	sink   telemetry.Sink
	logger logging.Logger
}

// NewAnalyzer constructs an Analyzer. A nil sink or logger is substituted
// with a no-op implementation.
func NewAnalyzer(sink telemetry.Sink, logger logging.Logger) *Analyzer {
	return &Analyzer{sink: telemetry.OrNop(sink), logger: logging.OrNoOp(logger)}
}

// Analyze scores the last p.Window messages against the sibling topic map.
// A window outside [MinWindow, MaxWindow] is rejected before any analysis.
func (a *Analyzer) Analyze(p Params) (*Result, error) {
	if p.Window < MinWindow || p.Window > MaxWindow {
		return nil, fmt.Errorf("analysis: message window must be between %d and %d, got %d", MinWindow, MaxWindow, p.Window)
	}

	defer func() {
		siblings := make([]string, 0, len(p.Siblings))
		for _, s := range p.Siblings {
			siblings = append(siblings, s.Name)
		}
		a.sink.Record(telemetry.Record{
			Kind:         telemetry.KindAnalysis,
			Identity:     p.Identity,
			Agent:        p.CurrentAgent,
			Siblings:     siblings,
			MessageCount: min(len(p.Messages), p.Window),
		})
	}()

	if len(p.Siblings) == 0 {
		a.logger.Debug("analysis.degenerate", "agent", p.CurrentAgent, "reason", "no siblings")
		return &Result{
			MessageCount:   0,
			DominantTopics: []string{},
			TopicShifts:    []TopicShift{},
			TopicStability: 1.0,
			Patterns:       []string{},
			Continuity:     []string{},
			Recommendation: recommendNoSiblings,
		}, nil
	}

	window := p.Messages
	if len(window) > p.Window {
		window = window[len(window)-p.Window:]
	}

	if len(window) == 0 {
		return &Result{
			MessageCount:   0,
			DominantTopics: []string{},
			TopicShifts:    []TopicShift{},
			TopicStability: 1.0,
			Patterns:       []string{},
			Continuity:     []string{},
			Recommendation: recommendNoHistory,
		}, nil
	}

	tm := BuildTopicMap(p.Siblings)

	dominants := make([]string, 0, len(window))
	topics := []string{}
	for _, msg := range window {
		agent, _ := tm.DominantAgent(msg.Content)
		dominants = append(dominants, agent)
		if agent != "" && !contains(topics, agent) {
			topics = append(topics, agent)
		}
	}

	shifts := detectShifts(dominants)
	stability := 1.0
	if len(window) > 1 {
		stability = 1.0 - float64(len(shifts))/float64(len(window)-1)
		if stability < 0 {
			stability = 0
		}
	}

	result := &Result{
		MessageCount:   len(window),
		DominantTopics: topics,
		TopicShifts:    shifts,
		TopicStability: stability,
		Patterns:       derivePatterns(dominants, shifts),
		Continuity:     deriveContinuity(p.CurrentAgent, dominants),
		Recommendation: recommend(p.CurrentAgent, dominants, stability),
	}

	a.logger.Debug("analysis.complete",
		"agent", p.CurrentAgent,
		"messages", result.MessageCount,
		"stability", result.TopicStability,
		"shifts", len(result.TopicShifts),
	)

	return result, nil
}

// detectShifts marks positions where the dominant topic of consecutive
// messages diverges. Messages with no dominant topic do not start a shift.
func detectShifts(dominants []string) []TopicShift {
	shifts := []TopicShift{}
	for i := 1; i < len(dominants); i++ {
		prev, cur := dominants[i-1], dominants[i]
		if prev == "" || cur == "" || prev == cur {
			continue
		}
		shifts = append(shifts, TopicShift{FromAgent: prev, ToAgent: cur, Position: i})
	}
	return shifts
}

func derivePatterns(dominants []string, shifts []TopicShift) []string {
	patterns := []string{}

	if focus := sustainedFocus(dominants); focus != "" {
		patterns = append(patterns, fmt.Sprintf("sustained focus on %s", focus))
	}
	if len(shifts) >= 2 {
		patterns = append(patterns, "frequent topic switching")
	}
	unmatched := 0
	for _, d := range dominants {
		if d == "" {
			unmatched++
		}
	}
	if unmatched > len(dominants)/2 {
		patterns = append(patterns, "conversation mostly outside sibling specialties")
	}
	return patterns
}

// sustainedFocus returns the dominant agent when every matched message agrees
// on it, otherwise "".
func sustainedFocus(dominants []string) string {
	focus := ""
	for _, d := range dominants {
		if d == "" {
			continue
		}
		if focus == "" {
			focus = d
			continue
		}
		if focus != d {
			return ""
		}
	}
	return focus
}

func deriveContinuity(currentAgent string, dominants []string) []string {
	continuity := []string{}
	last := ""
	for i := len(dominants) - 1; i >= 0; i-- {
		if dominants[i] != "" {
			last = dominants[i]
			break
		}
	}
	switch {
	case last == "":
		continuity = append(continuity, "latest messages match no sibling specialty")
	case last == currentAgent:
		continuity = append(continuity, "latest topic continues with current agent")
	default:
		continuity = append(continuity, fmt.Sprintf("latest topic leans toward %s", last))
	}
	return continuity
}

func recommend(currentAgent string, dominants []string, stability float64) string {
	last := ""
	for i := len(dominants) - 1; i >= 0; i-- {
		if dominants[i] != "" {
			last = dominants[i]
			break
		}
	}
	if last == "" {
		return fmt.Sprintf("no sibling specialty matched; continue with %s", currentAgent)
	}
	return fmt.Sprintf("route to %s (topic stability %.2f)", last, stability)
}
