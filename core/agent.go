package core

// RouterMode categorizes how an agent participates in turn routing.
type RouterMode int

const (
	// RouterModeNone marks an agent that answers turns directly.
	RouterModeNone RouterMode = iota
	// RouterModeHandoff marks an agent that picks another agent to answer;
	// it does not answer itself unless routing fails to name a target.
	RouterModeHandoff
	// RouterModeController marks an agent that exposes its sub-agents as
	// in-turn callable capabilities rather than transferring control.
	RouterModeController
)

// String returns the manifest spelling of the mode.
func (m RouterMode) String() string {
	switch m {
	case RouterModeHandoff:
		return "handoff"
	case RouterModeController:
		return "controller"
	default:
		return "none"
	}
}

// AgentDefinition describes one agent: its identity, specialty, prompt
// material, and capability set. Definitions are loaded once at process start
// and are immutable for the lifetime of a run.
type AgentDefinition struct {
	Name           string     `json:"name" yaml:"name"`
	Description    string     `json:"description" yaml:"description"`
	Specialization string     `json:"specialization" yaml:"specialization"`
	Instructions   string     `json:"instructions" yaml:"instructions"`
	Model          string     `json:"model" yaml:"model"`
	Tools          []string   `json:"tools,omitempty" yaml:"tools"`
	SubAgents      []string   `json:"sub_agents,omitempty" yaml:"sub_agents"`
	Mode           RouterMode `json:"mode" yaml:"-"`
}

// Registry is the static lookup of agent definitions by name. Lookups return
// an explicit found flag; absence is never signalled with a bare nil.
type Registry interface {
	// Agent returns the definition registered under name.
	Agent(name string) (*AgentDefinition, bool)

	// Default returns the fixed default agent used when routing is
	// unavailable or a fallback name is empty. Always non-nil.
	Default() *AgentDefinition

	// Siblings returns the resolved sub-agent definitions of the named
	// agent in declaration order. Unknown names yield an empty slice.
	Siblings(name string) []*AgentDefinition

	// Names returns all registered agent names in registration order.
	Names() []string
}
