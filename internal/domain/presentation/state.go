// Package presentation derives what the chat UI shows from live signals:
// the speaking/listening/processing/idle state, the amplitude-driven scale,
// the typewriter reveal of the latest bot message and the loudness of the
// clip that is currently playing.
package presentation

// State is the derived UI state.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
)

// NoiseThreshold is the loudness above which a playing reply counts as speech.
const NoiseThreshold = 0.01

const (
	idleScale    = 0.9
	neutralScale = 1.0
	speakingGain = 0.5
)

// Inputs are the signals the state is derived from.
type Inputs struct {
	Recording        bool
	Loading          bool
	Uploading        bool
	LastTurnHasAudio bool
	Loudness         float64
}

// Derive computes the state. It holds no state of its own and is meant to be
// called again whenever any input changes.
func Derive(in Inputs) State {
	switch {
	case in.Recording:
		return StateListening
	case in.Loading || in.Uploading:
		return StateProcessing
	case in.LastTurnHasAudio && in.Loudness > NoiseThreshold:
		return StateSpeaking
	default:
		return StateIdle
	}
}

// Scale returns the visual scale of the indicator for a state.
func Scale(state State, loudness float64) float64 {
	switch state {
	case StateSpeaking:
		return neutralScale + clampUnit(loudness)*speakingGain
	case StateIdle:
		return idleScale
	default:
		return neutralScale
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
