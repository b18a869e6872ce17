package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	mock := NewMockModel("story-model")
	reg.Register("story-model", mock)

	got, ok := reg.Lookup("story-model")
	require.True(t, ok)
	assert.Equal(t, mock, got)

	assert.True(t, reg.Has("story-model"))
	assert.False(t, reg.Has("ghost"))

	_, ok = reg.Lookup("ghost")
	assert.False(t, ok)
}

func TestMockModel_ReplaysScript(t *testing.T) {
	mock := NewMockModel("m").Enqueue(
		Response{Text: "first"},
		Response{Text: "second"},
	)

	resp, err := mock.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Text)

	resp, err = mock.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Text)
}

func TestMockModel_EchoesAfterScript(t *testing.T) {
	mock := NewMockModel("m")

	resp, err := mock.Generate(context.Background(), Request{Turns: []Turn{
		{Role: "user", Content: "hello there"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "mock response to: hello there", resp.Text)
}

func TestMockModel_Fail(t *testing.T) {
	boom := errors.New("boom")
	mock := NewMockModel("m").Fail(boom)

	_, err := mock.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, boom)
}

func TestMockModel_RecordsRequests(t *testing.T) {
	mock := NewMockModel("m")
	_, err := mock.Generate(context.Background(), Request{Instructions: "be brief"})
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "be brief", reqs[0].Instructions)
	assert.Equal(t, "mock", mock.Info().Provider)
}
