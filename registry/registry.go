// Package registry provides the immutable agent registry: a static lookup of
// agent definitions by name, validated once at construction. Configuration
// violations (duplicate names, dangling sub-agent references, a Controller
// agent containing a Handoff sub-agent) are fatal and never degraded.
package registry

import (
	"fmt"

	"github.com/loreweave/loreweave/core"
)

// Static is an immutable core.Registry backed by a name-indexed map built
// once from a validated definition set. It is safe for concurrent reads.
type Static struct {
	agents      map[string]*core.AgentDefinition
	order       []string
	defaultName string
}

// New validates defs and builds a Static registry. defaultName selects the
// fixed default agent substituted whenever routing is unavailable or a
// fallback name is empty.
func New(defs []*core.AgentDefinition, defaultName string) (*Static, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("registry: no agent definitions provided")
	}

	agents := make(map[string]*core.AgentDefinition, len(defs))
	order := make([]string, 0, len(defs))

	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("registry: agent definition with empty name")
		}
		if _, exists := agents[def.Name]; exists {
			return nil, fmt.Errorf("registry: duplicate agent name %q", def.Name)
		}
		agents[def.Name] = def
		order = append(order, def.Name)
	}

	if _, ok := agents[defaultName]; !ok {
		return nil, fmt.Errorf("registry: default agent %q is not registered", defaultName)
	}

	for _, def := range defs {
		for _, subName := range def.SubAgents {
			sub, ok := agents[subName]
			if !ok {
				return nil, fmt.Errorf("registry: agent %q references unknown sub-agent %q", def.Name, subName)
			}
			if def.Mode == core.RouterModeController && sub.Mode == core.RouterModeHandoff {
				return nil, fmt.Errorf(
					"registry: controller agent %q must not contain handoff-mode sub-agent %q",
					def.Name, sub.Name,
				)
			}
		}
	}

	return &Static{agents: agents, order: order, defaultName: defaultName}, nil
}

// Agent returns the definition registered under name and whether it exists.
func (r *Static) Agent(name string) (*core.AgentDefinition, bool) {
	def, ok := r.agents[name]
	return def, ok
}

// Default returns the fixed default agent.
func (r *Static) Default() *core.AgentDefinition {
	return r.agents[r.defaultName]
}

// Siblings returns the resolved sub-agent definitions of the named agent in
// declaration order. Unknown agent names yield an empty slice.
func (r *Static) Siblings(name string) []*core.AgentDefinition {
	def, ok := r.agents[name]
	if !ok {
		return nil
	}
	siblings := make([]*core.AgentDefinition, 0, len(def.SubAgents))
	for _, subName := range def.SubAgents {
		if sub, ok := r.agents[subName]; ok {
			siblings = append(siblings, sub)
		}
	}
	return siblings
}

// Names returns all registered agent names in registration order.
func (r *Static) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
