package presentation

import (
	"errors"
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Analysis defaults matching a browser AnalyserNode.
const (
	FFTSize               = 256
	minDecibels           = -100.0
	maxDecibels           = -30.0
	smoothingTimeConstant = 0.8
)

// PCMAnalyser computes the magnitude spectrum of the WAV clip loaded in a
// player, over the FFTSize samples preceding the playback position. Clips
// that are not PCM WAV read as silence.
type PCMAnalyser struct {
	player *Player

	mu        sync.Mutex
	suspended bool
	clip      *Clip
	pcm       *PCM
	fft       *fourier.FFT
	window    []float64
	frame     []float64
	coeffs    []complex128
	smoothed  []float64
}

// NewPCMAnalyser is an AnalyserFactory.
func NewPCMAnalyser(player *Player) (Analyser, error) {
	if player == nil {
		return nil, errors.New("pcm analyser: nil player")
	}

	a := &PCMAnalyser{
		player:   player,
		fft:      fourier.NewFFT(FFTSize),
		window:   make([]float64, FFTSize),
		frame:    make([]float64, FFTSize),
		coeffs:   make([]complex128, FFTSize/2+1),
		smoothed: make([]float64, FFTSize/2),
	}

	// Blackman window, as applied by AnalyserNode.
	const alpha = 0.16
	a0, a1, a2 := (1-alpha)/2, 0.5, alpha/2
	for n := range a.window {
		x := 2 * math.Pi * float64(n) / FFTSize
		a.window[n] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return a, nil
}

// FrequencyBinCount implements Analyser.
func (a *PCMAnalyser) FrequencyBinCount() int {
	return FFTSize / 2
}

// Suspended implements Analyser.
func (a *PCMAnalyser) Suspended() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.suspended
}

// Suspend stops analysis until Resume; reads return silence meanwhile.
func (a *PCMAnalyser) Suspend() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.suspended = true
}

// Resume implements Analyser.
func (a *PCMAnalyser) Resume() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.suspended = false
	return nil
}

// ByteFrequencyData implements Analyser.
func (a *PCMAnalyser) ByteFrequencyData(dst []byte) {
	clip := a.player.Source()
	position := a.player.Position()

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range dst {
		dst[i] = 0
	}
	if a.suspended {
		return
	}
	pcm := a.load(clip)
	if pcm == nil {
		return
	}

	end := int(position.Seconds() * float64(pcm.SampleRate))
	start := end - FFTSize
	for n := range a.frame {
		idx := start + n
		if idx >= 0 && idx < len(pcm.Samples) {
			a.frame[n] = pcm.Samples[idx] * a.window[n]
		} else {
			a.frame[n] = 0
		}
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	bins := FFTSize / 2
	if len(dst) < bins {
		bins = len(dst)
	}
	for k := 0; k < bins; k++ {
		magnitude := cmplx.Abs(a.coeffs[k]) / FFTSize
		a.smoothed[k] = smoothingTimeConstant*a.smoothed[k] + (1-smoothingTimeConstant)*magnitude
		dst[k] = decibelsToByte(20 * math.Log10(a.smoothed[k]))
	}
}

func (a *PCMAnalyser) load(clip *Clip) *PCM {
	if clip == a.clip {
		return a.pcm
	}

	a.clip = clip
	a.pcm = nil
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
	if clip == nil {
		return nil
	}
	if pcm, err := DecodeWAV(clip.Data); err == nil {
		a.pcm = pcm
	}
	return a.pcm
}

func decibelsToByte(db float64) byte {
	if math.IsInf(db, -1) || math.IsNaN(db) {
		return 0
	}
	scaled := 255 * (db - minDecibels) / (maxDecibels - minDecibels)
	if scaled <= 0 {
		return 0
	}
	if scaled >= 255 {
		return 255
	}
	return byte(scaled)
}
