package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreweave/loreweave/core"
)

const sampleManifest = `
default_agent: narrator
agents:
  - name: dispatch
    description: Routes player messages to the right specialist.
    instructions: Route the conversation.
    model: claude-sonnet
    mode: handoff
    tools:
      - route_conversation
    sub_agents:
      - narrator
      - cartographer
  - name: narrator
    description: Narrates the campaign.
    specialization: story narration scenes dialogue
    instructions: Narrate.
    model: claude-sonnet
  - name: cartographer
    description: Keeps the campaign maps.
    specialization: maps regions travel distances
    instructions: Answer map questions.
    model: gpt-4o
`

func TestLoad(t *testing.T) {
	m, err := Load(strings.NewReader(sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "narrator", m.DefaultAgent)
	require.Len(t, m.Agents, 3)
	assert.Equal(t, "dispatch", m.Agents[0].Name)
	assert.Equal(t, "handoff", m.Agents[0].Mode)
	assert.Equal(t, []string{"route_conversation"}, m.Agents[0].Tools)
	assert.Equal(t, []string{"narrator", "cartographer"}, m.Agents[0].SubAgents)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("default_agent: a\nbudget: 12\n"))
	require.Error(t, err)
}

func TestManifest_Definitions(t *testing.T) {
	m, err := Load(strings.NewReader(sampleManifest))
	require.NoError(t, err)

	defs, err := m.Definitions()
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, core.RouterModeHandoff, defs[0].Mode)
	assert.Equal(t, core.RouterModeNone, defs[1].Mode)
}

func TestManifest_Definitions_UnknownMode(t *testing.T) {
	m := &Manifest{Agents: []AgentSpec{{
		AgentDefinition: core.AgentDefinition{Name: "x", Model: "m"},
		Mode:            "broadcast",
	}}}

	_, err := m.Definitions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "broadcast"`)
}

func TestManifest_Registry(t *testing.T) {
	m, err := Load(strings.NewReader(sampleManifest))
	require.NoError(t, err)

	reg, err := m.Registry()
	require.NoError(t, err)
	assert.Equal(t, "narrator", reg.Default().Name)

	def, ok := reg.Agent("cartographer")
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", def.Model)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want core.RouterMode
	}{
		{"", core.RouterModeNone},
		{"none", core.RouterModeNone},
		{"handoff", core.RouterModeHandoff},
		{"controller", core.RouterModeController},
	}
	for _, tt := range tests {
		mode, err := ParseMode(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, mode)
	}

	_, err := ParseMode("nope")
	require.Error(t, err)
}
