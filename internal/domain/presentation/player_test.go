package presentation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedOutput plays until the context is done or release is closed.
type gatedOutput struct {
	mu      sync.Mutex
	played  []*Clip
	release chan struct{}
}

func newGatedOutput() *gatedOutput {
	return &gatedOutput{release: make(chan struct{})}
}

func (o *gatedOutput) Play(ctx context.Context, clip *Clip) error {
	o.mu.Lock()
	o.played = append(o.played, clip)
	release := o.release
	o.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-release:
		return nil
	}
}

type eventLog struct {
	mu     sync.Mutex
	events []PlayerEvent
}

func (l *eventLog) record(e PlayerEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) snapshot() []PlayerEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]PlayerEvent(nil), l.events...)
}

func TestPlayer_PlayWithoutSource(t *testing.T) {
	p := NewPlayer(newGatedOutput(), zerolog.Nop())
	assert.ErrorIs(t, p.Play(context.Background()), ErrNoSource)
}

func TestPlayer_LoadPausesPrevious(t *testing.T) {
	out := newGatedOutput()
	p := NewPlayer(out, zerolog.Nop())
	events := &eventLog{}
	p.OnEvent(events.record)

	first := &Clip{URL: "/v1/audio/aud_1"}
	second := &Clip{URL: "/v1/audio/aud_2"}

	p.Load(first)
	require.NoError(t, p.Play(context.Background()))
	assert.True(t, p.Playing())
	assert.NoError(t, p.Play(context.Background()), "second play is a no-op")

	p.Load(second)
	assert.False(t, p.Playing())
	assert.Same(t, second, p.Source())
	assert.Zero(t, p.Position())

	assert.Equal(t, []PlayerEvent{PlayerPlay, PlayerPause}, events.snapshot())
}

func TestPlayer_NaturalEnd(t *testing.T) {
	out := newGatedOutput()
	p := NewPlayer(out, zerolog.Nop())
	events := &eventLog{}
	p.OnEvent(events.record)

	p.Load(&Clip{URL: "a"})
	require.NoError(t, p.Play(context.Background()))
	close(out.release)
	p.Wait()

	assert.Eventually(t, func() bool {
		return len(events.snapshot()) == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, []PlayerEvent{PlayerPlay, PlayerEnded}, events.snapshot())
	assert.False(t, p.Playing())

	p.Pause()
	assert.Len(t, events.snapshot(), 2, "pause after end emits nothing")
}

func TestSilentOutput(t *testing.T) {
	wav := encodeWAV(8000, make([]int16, 80)) // 10ms
	start := time.Now()
	require.NoError(t, SilentOutput{Fallback: time.Hour}.Play(context.Background(), &Clip{Data: wav}))
	assert.Less(t, time.Since(start), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SilentOutput{Fallback: time.Hour}.Play(ctx, &Clip{Data: []byte("mp3")})
	assert.ErrorIs(t, err, context.Canceled)
}
