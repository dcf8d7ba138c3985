package presentation

import "github.com/janhq/relay-api/internal/domain/conversation"

// Model is the input side of the state machine, updated by discrete events.
type Model struct {
	Recording        bool
	Loading          bool
	Uploading        bool
	LastTurnHasAudio bool
	Loudness         float64
}

// Inputs returns the derivation inputs held by the model.
func (m Model) Inputs() Inputs {
	return Inputs{
		Recording:        m.Recording,
		Loading:          m.Loading,
		Uploading:        m.Uploading,
		LastTurnHasAudio: m.LastTurnHasAudio,
		Loudness:         m.Loudness,
	}
}

// State derives the current state.
func (m Model) State() State {
	return Derive(m.Inputs())
}

// Scale derives the current indicator scale.
func (m Model) Scale() float64 {
	return Scale(m.State(), m.Loudness)
}

// Event is a discrete transition input for Reduce.
type Event interface {
	event()
}

type (
	// RecordingStarted marks the start of voice capture. Playback must have
	// been stopped by the caller before this event is applied.
	RecordingStarted struct{}
	RecordingStopped struct{}
	RequestStarted   struct{}
	UploadStarted    struct{}

	// ResponseReceived carries the turn produced by a chat request.
	ResponseReceived struct{ Turn conversation.Turn }

	// UploadFinished carries the turn produced by an upload.
	UploadFinished struct{ Turn conversation.Turn }

	// PlaybackTick carries a fresh loudness sample.
	PlaybackTick    struct{ Loudness float64 }
	PlaybackStopped struct{}
)

func (RecordingStarted) event() {}
func (RecordingStopped) event() {}
func (RequestStarted) event()   {}
func (UploadStarted) event()    {}
func (ResponseReceived) event() {}
func (UploadFinished) event()   {}
func (PlaybackTick) event()     {}
func (PlaybackStopped) event()  {}

// Reduce applies an event and returns the next model.
func Reduce(m Model, ev Event) Model {
	switch e := ev.(type) {
	case RecordingStarted:
		m.Recording = true
		m.Loudness = 0
	case RecordingStopped:
		m.Recording = false
	case RequestStarted:
		m.Loading = true
	case UploadStarted:
		m.Uploading = true
	case ResponseReceived:
		m.Loading = false
		m.LastTurnHasAudio = botWithAudio(e.Turn)
		m.Loudness = 0
	case UploadFinished:
		m.Uploading = false
		m.LastTurnHasAudio = botWithAudio(e.Turn)
	case PlaybackTick:
		m.Loudness = clampUnit(e.Loudness)
	case PlaybackStopped:
		m.Loudness = 0
	}
	return m
}

func botWithAudio(turn conversation.Turn) bool {
	return turn.Role == conversation.RoleBot && turn.HasAudio()
}
