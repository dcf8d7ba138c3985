package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_SeededWithGreeting(t *testing.T) {
	h := NewHistory()

	require.Equal(t, 1, h.Len())
	first := h.Turns()[0]
	assert.Equal(t, RoleBot, first.Role)
	assert.Equal(t, Greeting, first.Content)
	assert.Empty(t, h.Outbound())
}

func TestHistory_OutboundSkipsGreeting(t *testing.T) {
	h := NewHistory()
	h.Append(Turn{Role: RoleUser, Content: "hi"})
	h.Append(Turn{Role: RoleBot, Content: "hello", AudioURL: "/v1/audio/aud_1"})

	out := h.Outbound()
	require.Len(t, out, 2)
	assert.Equal(t, "hi", out[0].Content)

	last, ok := h.Last()
	require.True(t, ok)
	assert.True(t, last.HasAudio())

	// Mutating the copy must not affect the history.
	out[0].Content = "changed"
	assert.Equal(t, "hi", h.Turns()[1].Content)
}

type memorySessionStore struct {
	id      string
	loadErr error
	saves   int
}

func (m *memorySessionStore) Load(ctx context.Context) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	if m.id == "" {
		return "", ErrNoSession
	}
	return m.id, nil
}

func (m *memorySessionStore) Save(ctx context.Context, id string) error {
	m.id = id
	m.saves++
	return nil
}

func TestEnsureSession_CreatesOnceAndReuses(t *testing.T) {
	store := &memorySessionStore{}
	ctx := context.Background()

	first, err := EnsureSession(ctx, store)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "session-"))

	second, err := EnsureSession(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.saves)
}

func TestEnsureSession_PropagatesStoreFailure(t *testing.T) {
	store := &memorySessionStore{loadErr: errors.New("disk on fire")}

	_, err := EnsureSession(context.Background(), store)
	require.Error(t, err)
	assert.Equal(t, 0, store.saves)
}

func TestSessionContext(t *testing.T) {
	ctx := WithSession(context.Background(), "session-abc")
	assert.Equal(t, "session-abc", SessionFromContext(ctx))
	assert.Empty(t, SessionFromContext(context.Background()))
}
