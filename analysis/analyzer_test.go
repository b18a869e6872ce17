package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreweave/loreweave/core"
	"github.com/loreweave/loreweave/telemetry"
)

func siblings() []*core.AgentDefinition {
	return []*core.AgentDefinition{
		{Name: "narrator", Specialization: "story narration scenes dialogue"},
		{Name: "cartographer", Specialization: "maps regions travel distances"},
	}
}

func userMessages(contents ...string) []core.Message {
	msgs := make([]core.Message, 0, len(contents))
	for _, c := range contents {
		msgs = append(msgs, core.NewUserMessage(c))
	}
	return msgs
}

// analyze runs the analyzer with a recording sink and asserts that exactly
// one telemetry record was emitted, whatever the outcome.
func analyze(t *testing.T, p Params) (*Result, error) {
	t.Helper()

	var records []telemetry.Record
	a := NewAnalyzer(telemetry.FuncSink(func(rec telemetry.Record) {
		records = append(records, rec)
	}), nil)

	res, err := a.Analyze(p)

	require.Len(t, records, 1)
	assert.Equal(t, telemetry.KindAnalysis, records[0].Kind)
	return res, err
}

func TestAnalyze_WindowBounds(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	for _, window := range []int{0, -1, 11, 100} {
		_, err := a.Analyze(Params{CurrentAgent: "narrator", Siblings: siblings(), Window: window})
		require.Error(t, err, "window %d", window)
	}
	for _, window := range []int{1, 10} {
		_, err := a.Analyze(Params{CurrentAgent: "narrator", Siblings: siblings(), Window: window})
		require.NoError(t, err, "window %d", window)
	}
}

func TestAnalyze_WindowRejectionSkipsTelemetry(t *testing.T) {
	var records []telemetry.Record
	a := NewAnalyzer(telemetry.FuncSink(func(rec telemetry.Record) {
		records = append(records, rec)
	}), nil)

	_, err := a.Analyze(Params{CurrentAgent: "narrator", Siblings: siblings(), Window: 0})
	require.Error(t, err)
	assert.Empty(t, records)
}

func TestAnalyze_NoSiblings(t *testing.T) {
	res, err := analyze(t, Params{
		CurrentAgent: "narrator",
		Messages:     userMessages("tell me about the map"),
		Window:       5,
	})

	require.NoError(t, err)
	assert.Zero(t, res.MessageCount)
	assert.Equal(t, 1.0, res.TopicStability)
	assert.Empty(t, res.TopicShifts)
	assert.Equal(t, recommendNoSiblings, res.Recommendation)
}

func TestAnalyze_NoMessages(t *testing.T) {
	res, err := analyze(t, Params{
		CurrentAgent: "narrator",
		Siblings:     siblings(),
		Window:       5,
	})

	require.NoError(t, err)
	assert.Zero(t, res.MessageCount)
	assert.Equal(t, 1.0, res.TopicStability)
	assert.Empty(t, res.DominantTopics)
	assert.Equal(t, recommendNoHistory, res.Recommendation)
}

func TestAnalyze_SustainedFocus(t *testing.T) {
	res, err := analyze(t, Params{
		CurrentAgent: "narrator",
		Siblings:     siblings(),
		Messages: userMessages(
			"how far is the travel between regions",
			"show me the maps of the coast",
			"what distances lie between the keeps",
		),
		Window: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, res.MessageCount)
	assert.Equal(t, []string{"cartographer"}, res.DominantTopics)
	assert.Empty(t, res.TopicShifts)
	assert.Equal(t, 1.0, res.TopicStability)
	assert.Contains(t, res.Patterns, "sustained focus on cartographer")
	assert.Contains(t, res.Recommendation, "route to cartographer")
}

func TestAnalyze_TopicShifts(t *testing.T) {
	res, err := analyze(t, Params{
		CurrentAgent: "narrator",
		Siblings:     siblings(),
		Messages: userMessages(
			"narrate the story scenes",
			"show me maps and travel distances",
			"back to the story dialogue",
		),
		Window: 10,
	})

	require.NoError(t, err)
	require.Len(t, res.TopicShifts, 2)
	assert.Equal(t, TopicShift{FromAgent: "narrator", ToAgent: "cartographer", Position: 1}, res.TopicShifts[0])
	assert.Equal(t, TopicShift{FromAgent: "cartographer", ToAgent: "narrator", Position: 2}, res.TopicShifts[1])
	assert.InDelta(t, 0.0, res.TopicStability, 1e-9)
	assert.Contains(t, res.Patterns, "frequent topic switching")
}

func TestAnalyze_WindowTruncation(t *testing.T) {
	msgs := userMessages(
		"maps maps maps",
		"story scenes dialogue",
		"story scenes dialogue",
	)
	res, err := analyze(t, Params{
		CurrentAgent: "narrator",
		Siblings:     siblings(),
		Messages:     msgs,
		Window:       2,
	})

	require.NoError(t, err)
	// The first (cartographer-leaning) message falls outside the window.
	assert.Equal(t, 2, res.MessageCount)
	assert.Equal(t, []string{"narrator"}, res.DominantTopics)
	assert.Equal(t, 1.0, res.TopicStability)
}

func TestAnalyze_OutsideSpecialties(t *testing.T) {
	res, err := analyze(t, Params{
		CurrentAgent: "narrator",
		Siblings:     siblings(),
		Messages: userMessages(
			"completely unrelated question",
			"another unrelated remark",
			"more unrelated chatter",
		),
		Window: 10,
	})

	require.NoError(t, err)
	assert.Empty(t, res.DominantTopics)
	assert.Equal(t, 1.0, res.TopicStability)
	assert.Contains(t, res.Patterns, "conversation mostly outside sibling specialties")
	assert.Contains(t, res.Recommendation, "continue with narrator")
}
