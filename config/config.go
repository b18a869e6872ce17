// Package config loads declarative agent manifests. A manifest names the
// default agent and lists agent definitions, so registries can be declared
// in YAML instead of built by hand.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/registry"
)

// AgentSpec is one manifest agent entry: a definition plus its routing mode
// spelled as a string.
type AgentSpec struct {
	core.AgentDefinition `yaml:",inline"`
	Mode                 string `yaml:"mode"`
}

// Manifest is the top-level manifest document.
type Manifest struct {
	DefaultAgent string      `yaml:"default_agent"`
	Agents       []AgentSpec `yaml:"agents"`
}

// Load parses a manifest from r.
func Load(r io.Reader) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("config: parse manifest: %w", err)
	}
	return &m, nil
}

// LoadFile parses the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open manifest: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Definitions converts the manifest entries into agent definitions,
// resolving each entry's mode string.
func (m *Manifest) Definitions() ([]*core.AgentDefinition, error) {
	defs := make([]*core.AgentDefinition, 0, len(m.Agents))
	for _, spec := range m.Agents {
		mode, err := ParseMode(spec.Mode)
		if err != nil {
			return nil, fmt.Errorf("config: agent %q: %w", spec.Name, err)
		}
		def := spec.AgentDefinition
		def.Mode = mode
		defs = append(defs, &def)
	}
	return defs, nil
}

// Registry builds a validated agent registry from the manifest.
func (m *Manifest) Registry() (*registry.Static, error) {
	defs, err := m.Definitions()
	if err != nil {
		return nil, err
	}
	return registry.New(defs, m.DefaultAgent)
}

// ParseMode resolves the manifest spelling of a routing mode. An empty
// string means none.
func ParseMode(s string) (core.RouterMode, error) {
	switch s {
	case "", "none":
		return core.RouterModeNone, nil
	case "handoff":
		return core.RouterModeHandoff, nil
	case "controller":
		return core.RouterModeController, nil
	default:
		return core.RouterModeNone, fmt.Errorf("unknown mode %q", s)
	}
}
