package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadIdentity_Key(t *testing.T) {
	id := ThreadIdentity{UserID: "u", ThreadID: "t", CampaignID: "c", AgentScope: "a"}
	assert.Equal(t, "u/t/c/a", id.Key())

	// Empty components stay positional so identities never collide.
	assert.Equal(t, "u//c/", ThreadIdentity{UserID: "u", CampaignID: "c"}.Key())
	assert.NotEqual(t, ThreadIdentity{UserID: "u", ThreadID: "t"}.Key(), ThreadIdentity{UserID: "u/t"}.Key())
}

func TestThreadIdentity_WithScope(t *testing.T) {
	id := ThreadIdentity{UserID: "u", ThreadID: "t", CampaignID: "c", AgentScope: "dispatch"}
	scoped := id.WithScope("narrator")

	assert.Equal(t, "narrator", scoped.AgentScope)
	assert.Equal(t, "dispatch", id.AgentScope)
	assert.Equal(t, id.ThreadID, scoped.ThreadID)
}

func TestLastUserMessage(t *testing.T) {
	msgs := []Message{
		NewUserMessage("first"),
		NewMessage(RoleAssistant, "narrator", "reply"),
		NewUserMessage("second"),
		NewMessage(RoleAssistant, "narrator", "another reply"),
	}

	last, ok := LastUserMessage(msgs)
	require.True(t, ok)
	assert.Equal(t, "second", last.Content)

	_, ok = LastUserMessage(nil)
	assert.False(t, ok)
}

func TestInvokeResult_Reply(t *testing.T) {
	res := &InvokeResult{Messages: []Message{
		NewMessage(RoleAssistant, "narrator", "early"),
		NewMessage(RoleTool, "narrator", "tool output"),
		NewMessage(RoleAssistant, "narrator", "final"),
	}}
	assert.Equal(t, "final", res.Reply())

	assert.Empty(t, (&InvokeResult{}).Reply())
}

func TestCheckpoint_Clone(t *testing.T) {
	cp := &Checkpoint{
		Key:      "u/t/c/a",
		Messages: []Message{NewUserMessage("hello")},
		State:    map[string]any{"scene": "tavern"},
	}

	clone := cp.Clone()
	clone.Messages[0].Content = "mutated"
	clone.State["scene"] = "forest"

	assert.Equal(t, "hello", cp.Messages[0].Content)
	assert.Equal(t, "tavern", cp.State["scene"])

	var nilCP *Checkpoint
	assert.Nil(t, nilCP.Clone())
}

func TestRouterMode_String(t *testing.T) {
	assert.Equal(t, "none", RouterModeNone.String())
	assert.Equal(t, "handoff", RouterModeHandoff.String())
	assert.Equal(t, "controller", RouterModeController.String())
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EventRouting, "dispatch", "handed off")
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, EventRouting, ev.Kind)
	assert.Equal(t, "dispatch", ev.Author)
	assert.False(t, ev.Timestamp.IsZero())
}
