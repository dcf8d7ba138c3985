package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/janhq/relay-api/internal/application/chat"
	"github.com/janhq/relay-api/internal/domain/conversation"
	"github.com/janhq/relay-api/internal/domain/presentation"
)

// renderer prints the conversation. Bot replies are typed out as the
// typewriter reveals them. State changes go to status when it is set.
type renderer struct {
	mu       sync.Mutex
	out      io.Writer
	status   io.Writer
	revealed int
	state    presentation.State
}

func newRenderer(out, status io.Writer) *renderer {
	return &renderer{out: out, status: status, state: presentation.StateIdle}
}

func (r *renderer) observer() chat.Observer {
	return chat.Observer{
		OnTurn:   r.turn,
		OnState:  r.model,
		OnReveal: r.reveal,
	}
}

func (r *renderer) greeting() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "bot> %s\n", conversation.Greeting)
}

func (r *renderer) turn(turn conversation.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if turn.Role != conversation.RoleBot {
		return
	}
	r.revealed = 0
	fmt.Fprint(r.out, "bot> ")
}

func (r *renderer) reveal(partial string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runes := []rune(partial)
	if len(runes) < r.revealed {
		r.revealed = 0
	}
	fmt.Fprint(r.out, string(runes[r.revealed:]))
	r.revealed = len(runes)
}

// finish ends the reply line, printing whatever the typewriter has not shown.
func (r *renderer) finish(turn conversation.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runes := []rune(turn.Content)
	if r.revealed < len(runes) {
		fmt.Fprint(r.out, string(runes[r.revealed:]))
	}
	r.revealed = len(runes)
	fmt.Fprintln(r.out)
	if turn.HasAudio() {
		fmt.Fprintf(r.out, "     ♪ %s\n", turn.AudioURL)
	}
}

func (r *renderer) model(m presentation.Model) {
	state := m.State()

	r.mu.Lock()
	defer r.mu.Unlock()
	if state == r.state {
		return
	}
	r.state = state
	if r.status != nil {
		fmt.Fprintf(r.status, "  [%s scale=%.2f]\n", state, m.Scale())
	}
}
