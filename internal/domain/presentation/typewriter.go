package presentation

import (
	"context"
	"sync"
	"time"
)

// DefaultTypewriterSpeed is the delay between two revealed characters.
const DefaultTypewriterSpeed = 30 * time.Millisecond

// Typewriter reveals a text one code point per tick. It is cosmetic only:
// callers keep the full text and hand it to other consumers right away.
type Typewriter struct {
	speed    time.Duration
	onReveal func(string)

	runMu sync.Mutex // serializes Reveal and Stop

	mu       sync.Mutex
	revealed string
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewTypewriter creates a typewriter. onReveal, when set, receives every
// partial text from the reveal goroutine.
func NewTypewriter(speed time.Duration, onReveal func(string)) *Typewriter {
	if speed <= 0 {
		speed = DefaultTypewriterSpeed
	}
	return &Typewriter{speed: speed, onReveal: onReveal}
}

// Reveal cancels the reveal in progress and starts over from empty with text.
// It returns immediately.
func (t *Typewriter) Reveal(ctx context.Context, text string) {
	t.runMu.Lock()
	defer t.runMu.Unlock()

	t.stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.mu.Lock()
	t.revealed = ""
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go t.run(runCtx, []rune(text), done)
}

// Stop cancels the reveal in progress, if any, and waits for it to exit.
func (t *Typewriter) Stop() {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	t.stop()
}

// Text returns the part of the text revealed so far.
func (t *Typewriter) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.revealed
}

// Done is closed when the current reveal finishes or is cancelled. It is nil
// before the first Reveal.
func (t *Typewriter) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Typewriter) stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (t *Typewriter) run(ctx context.Context, runes []rune, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.speed)
	defer ticker.Stop()

	for i := 1; i <= len(runes); i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		partial := string(runes[:i])
		t.mu.Lock()
		t.revealed = partial
		t.mu.Unlock()

		if t.onReveal != nil {
			t.onReveal(partial)
		}
	}
}
