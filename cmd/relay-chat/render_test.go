package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/relay-api/internal/domain/conversation"
	"github.com/janhq/relay-api/internal/domain/presentation"
)

func TestRenderer_TypesOutReply(t *testing.T) {
	var out, status bytes.Buffer
	r := newRenderer(&out, &status)
	obs := r.observer()

	turn := conversation.Turn{Role: conversation.RoleBot, Content: "héllo", AudioURL: "/v1/audio/aud_1"}
	obs.OnTurn(conversation.Turn{Role: conversation.RoleUser, Content: "hi"})
	obs.OnTurn(turn)
	obs.OnReveal("h")
	obs.OnReveal("hé")
	r.finish(turn)

	assert.Equal(t, "bot> héllo\n     ♪ /v1/audio/aud_1\n", out.String())

	obs.OnState(presentation.Model{Loading: true})
	obs.OnState(presentation.Model{Loading: true})
	obs.OnState(presentation.Model{})
	assert.Equal(t, 2, strings.Count(status.String(), "\n"))
	assert.Contains(t, status.String(), "[processing scale=1.00]")
	assert.Contains(t, status.String(), "[idle scale=0.90]")
}

func TestChatREPL_Commands(t *testing.T) {
	var out bytes.Buffer
	repl := &chatREPL{out: &out}

	quit, err := repl.handle(context.Background(), "/quit")
	require.NoError(t, err)
	assert.True(t, quit)

	_, err = repl.handle(context.Background(), "/voice")
	assert.EqualError(t, err, "usage: /voice <file>")

	_, err = repl.handle(context.Background(), "/upload   ")
	assert.Error(t, err)

	quit, err = repl.handle(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, quit)
}

func TestNewOutput(t *testing.T) {
	output, err := newOutput("")
	require.NoError(t, err)
	assert.IsType(t, presentation.SilentOutput{}, output)

	_, err = newOutput("definitely-not-a-player-binary --flag")
	assert.Error(t, err)
}
