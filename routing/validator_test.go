package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestValidate_BlankResponseDowngrades(t *testing.T) {
	md := Metadata{Success: true}

	for _, response := range []string{"", "   ", "\n\t"} {
		got := Validate(md, response)
		assert.False(t, got.Success, "response %q", response)
	}
}

func TestValidate_NonBlankKeepsSuccess(t *testing.T) {
	md := Validate(Metadata{Success: true}, "here is your answer")
	assert.True(t, md.Success)
}

func TestValidate_NeverUpgrades(t *testing.T) {
	md := Validate(Metadata{Success: false}, "a perfectly good response")
	assert.False(t, md.Success)
}

func TestValidate_PassesOtherFieldsThrough(t *testing.T) {
	sat := 0.8
	in := Metadata{
		Decision:      &Decision{TargetAgent: "narrator"},
		ExecutionTime: 42 * time.Millisecond,
		Success:       true,
		FallbackUsed:  true,
		Satisfaction:  &sat,
	}

	got := Validate(in, "")
	assert.Equal(t, in.Decision, got.Decision)
	assert.Equal(t, in.ExecutionTime, got.ExecutionTime)
	assert.True(t, got.FallbackUsed)
	assert.Equal(t, in.Satisfaction, got.Satisfaction)
	assert.False(t, got.Success)
}

func TestValidate_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		md := Metadata{
			Success:      rapid.Bool().Draw(t, "success"),
			FallbackUsed: rapid.Bool().Draw(t, "fallbackUsed"),
		}
		response := rapid.String().Draw(t, "response")

		once := Validate(md, response)
		twice := Validate(once, response)

		// Idempotent and only ever downgrades.
		assert.Equal(t, once, twice)
		if once.Success {
			assert.True(t, md.Success)
		}
		assert.Equal(t, md.FallbackUsed, once.FallbackUsed)
	})
}
