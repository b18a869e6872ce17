package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParsePayload(t *testing.T) {
	raw := `{
		"target_agent": "target-agent",
		"confidence": 4.25,
		"reasoning": "specialist match",
		"fallback_agent": "cheapest",
		"intent_keywords": ["maps", "travel"],
		"context_factors": ["ongoing quest"]
	}`

	payload, err := parsePayload(raw)
	require.NoError(t, err)
	assert.Equal(t, "target-agent", payload.TargetAgent)
	assert.InDelta(t, 4.25, payload.Confidence, 1e-9)
	assert.Equal(t, "specialist match", payload.Reasoning)
	assert.Equal(t, "cheapest", payload.FallbackAgent)
	assert.Equal(t, []string{"maps", "travel"}, payload.IntentKeywords)
	assert.Equal(t, []string{"ongoing quest"}, payload.ContextFactors)
}

func TestParsePayload_MalformedJSON(t *testing.T) {
	_, err := parsePayload(`{"target_agent": `)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "malformed JSON", perr.Reason)
}

func TestParsePayload_UnknownFieldRejected(t *testing.T) {
	_, err := parsePayload(`{"target_agent": "a", "priority": 9}`)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
}

func TestParsePayload_MissingTargetAgent(t *testing.T) {
	_, err := parsePayload(`{"confidence": 3}`)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Reason, "target_agent")
}

func TestParsePayload_WrongTypeRejected(t *testing.T) {
	_, err := parsePayload(`{"target_agent": "a", "confidence": "high"}`)
	require.Error(t, err)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, clampConfidence(-1.5))
	assert.Equal(t, 0.0, clampConfidence(0))
	assert.Equal(t, 4.25, clampConfidence(4.25))
	assert.Equal(t, MaxConfidence, clampConfidence(5))
	assert.Equal(t, MaxConfidence, clampConfidence(99))
}

func TestClampConfidence_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := rapid.Float64().Draw(t, "confidence")
		got := clampConfidence(c)

		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, MaxConfidence)
		if c >= 0 && c <= MaxConfidence {
			assert.Equal(t, c, got)
		}
		// Idempotent.
		assert.Equal(t, got, clampConfidence(got))
	})
}
