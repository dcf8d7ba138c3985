package conversation

// Role identifies who authored a turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Greeting is the synthetic bot turn every history starts with.
const Greeting = "Hello! I am your AI assistant connected to n8n. How can I help you today?"

// Turn is one message in the conversation.
type Turn struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// HasAudio reports whether the turn carries a playable audio URL.
func (t Turn) HasAudio() bool {
	return t.AudioURL != ""
}

// History is the append-only, oldest-first list of turns for one session.
// It is not safe for concurrent use; callers serialize access.
type History struct {
	turns []Turn
}

// NewHistory returns a history seeded with the greeting turn.
func NewHistory() *History {
	return &History{
		turns: []Turn{{Role: RoleBot, Content: Greeting}},
	}
}

// Append adds a turn to the end of the history.
func (h *History) Append(turn Turn) {
	h.turns = append(h.turns, turn)
}

// Turns returns a copy of all turns including the greeting.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns including the greeting.
func (h *History) Len() int {
	return len(h.turns)
}

// Last returns the most recent turn.
func (h *History) Last() (Turn, bool) {
	if len(h.turns) == 0 {
		return Turn{}, false
	}
	return h.turns[len(h.turns)-1], true
}

// Outbound returns the turns that may be sent to the workflow as context.
// The seeded greeting is never part of it.
func (h *History) Outbound() []Turn {
	if len(h.turns) <= 1 {
		return []Turn{}
	}
	out := make([]Turn, len(h.turns)-1)
	copy(out, h.turns[1:])
	return out
}
