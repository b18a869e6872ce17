package loreweave

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreweave/loreweave/analysis"
	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/model"
	"github.com/loreweave/loreweave/registry"
	"github.com/loreweave/loreweave/runner"
)

func newTestInstance(t *testing.T) (*Loreweave, *model.MockModel) {
	t.Helper()

	reg, err := registry.New([]*core.AgentDefinition{
		{Name: "narrator", Specialization: "story narration", Instructions: "Narrate.", Model: "story-model"},
		{Name: "cartographer", Specialization: "maps travel", Instructions: "Map.", Model: "story-model"},
	}, "narrator")
	require.NoError(t, err)

	mock := model.NewMockModel("story-model")
	models := model.NewRegistry()
	models.Register("story-model", mock)

	return New(reg, models), mock
}

func TestNew_RunTurn(t *testing.T) {
	lw, mock := newTestInstance(t)
	mock.Enqueue(model.Response{Text: "The story begins.", FinishReason: "stop"})

	res, err := lw.RunTurn(context.Background(), runner.TurnRequest{
		Identity: core.ThreadIdentity{UserID: "u", ThreadID: "t", CampaignID: "c", AgentScope: "narrator"},
		History:  []core.Message{core.NewUserMessage("begin")},
	})

	require.NoError(t, err)
	assert.Equal(t, "The story begins.", res.Response)
	assert.Equal(t, "narrator", res.Agent)
}

func TestNew_Accessors(t *testing.T) {
	lw, _ := newTestInstance(t)

	assert.NotNil(t, lw.Registry())
	assert.NotNil(t, lw.Models())
	assert.Equal(t, "narrator", lw.Registry().Default().Name)
}

func TestAnalyzeDelegates(t *testing.T) {
	lw, _ := newTestInstance(t)

	res, err := lw.Analyze(analysis.Params{
		CurrentAgent: "narrator",
		Siblings:     lw.Registry().Siblings("narrator"),
		Messages:     []core.Message{core.NewUserMessage("show me the maps")},
		Window:       5,
	})

	require.NoError(t, err)
	assert.NotNil(t, res)
}
