package presentation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoSource is returned by Play when nothing is loaded.
var ErrNoSource = errors.New("player has no source")

// Clip is a playable audio source.
type Clip struct {
	URL         string
	ContentType string
	Data        []byte
}

// Output renders a clip. Play blocks until the clip ends or ctx is done.
type Output interface {
	Play(ctx context.Context, clip *Clip) error
}

// PlayerEvent is a playback transition.
type PlayerEvent int

const (
	PlayerPlay PlayerEvent = iota + 1
	PlayerPause
	PlayerEnded
)

func (e PlayerEvent) String() string {
	switch e {
	case PlayerPlay:
		return "play"
	case PlayerPause:
		return "pause"
	case PlayerEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// PlayerListener receives playback transitions. Listeners run on the
// goroutine that caused the transition and must not call back into the
// player.
type PlayerListener func(event PlayerEvent)

// Player is the single reusable playback resource. Loading a source always
// pauses and clears the previous one first, so at most one
// play/pause/load sequence is in flight.
type Player struct {
	output Output
	log    zerolog.Logger
	now    func() time.Time

	opMu sync.Mutex

	mu        sync.Mutex
	source    *Clip
	playing   bool
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	listeners []PlayerListener
}

// NewPlayer creates a player rendering to output.
func NewPlayer(output Output, log zerolog.Logger) *Player {
	return &Player{
		output: output,
		log:    log.With().Str("component", "player").Logger(),
		now:    time.Now,
	}
}

// OnEvent registers a listener.
func (p *Player) OnEvent(listener PlayerListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, listener)
}

// Load replaces the current source.
func (p *Player) Load(clip *Clip) {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.pause()

	p.mu.Lock()
	p.source = clip
	p.mu.Unlock()
}

// Play starts the loaded source. Playing an already playing source is a no-op.
func (p *Player) Play(ctx context.Context) error {
	p.opMu.Lock()
	defer p.opMu.Unlock()

	p.mu.Lock()
	if p.source == nil {
		p.mu.Unlock()
		return ErrNoSource
	}
	if p.playing {
		p.mu.Unlock()
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	clip := p.source
	p.playing = true
	p.startedAt = p.now()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.emit(PlayerPlay)
	go p.run(runCtx, clip, done)
	return nil
}

// Pause stops playback and waits for the output to release the clip.
func (p *Player) Pause() {
	p.opMu.Lock()
	defer p.opMu.Unlock()
	p.pause()
}

// Wait blocks until the current playback ends or is paused.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Playing reports whether a clip is playing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Source returns the loaded clip, or nil.
func (p *Player) Source() *Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Position returns how long the current clip has been playing.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return 0
	}
	return p.now().Sub(p.startedAt)
}

func (p *Player) pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.playing = false
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	cancel()
	<-done
	p.emit(PlayerPause)
}

func (p *Player) run(ctx context.Context, clip *Clip, done chan struct{}) {
	err := p.output.Play(ctx, clip)
	if err != nil && ctx.Err() == nil {
		p.log.Warn().Err(err).Str("content_type", clip.ContentType).Msg("playback failed")
	}

	p.mu.Lock()
	ended := p.done == done
	var cancel context.CancelFunc
	if ended {
		cancel = p.cancel
		p.playing = false
		p.cancel = nil
		p.done = nil
	}
	p.mu.Unlock()

	close(done)
	if ended {
		cancel()
		p.emit(PlayerEnded)
	}
}

func (p *Player) emit(event PlayerEvent) {
	p.mu.Lock()
	listeners := append([]PlayerListener(nil), p.listeners...)
	p.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// SilentOutput paces playback by the clip duration without rendering sound.
// Clips that are not PCM WAV play for Fallback.
type SilentOutput struct {
	Fallback time.Duration
}

// Play implements Output.
func (o SilentOutput) Play(ctx context.Context, clip *Clip) error {
	duration := o.Fallback
	if pcm, err := DecodeWAV(clip.Data); err == nil {
		duration = pcm.Duration()
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
