package presentation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FrameInterval is the default sampling period while a clip plays.
const FrameInterval = 16 * time.Millisecond

// referenceMagnitude is the mean byte magnitude treated as full loudness.
const referenceMagnitude = 128.0

// Analyser exposes the frequency-domain view of the playing clip.
type Analyser interface {
	// FrequencyBinCount is half the FFT size.
	FrequencyBinCount() int
	// ByteFrequencyData fills dst with magnitudes scaled to 0..255.
	ByteFrequencyData(dst []byte)
	Suspended() bool
	Resume() error
}

// AnalyserFactory builds the analysis graph bound to a player.
type AnalyserFactory func(player *Player) (Analyser, error)

// Sampler turns the playing clip into a normalized loudness value. The
// analyser is built on first playback and reused afterwards; the sampling
// task lives exactly as long as the player is playing.
type Sampler struct {
	player   *Player
	factory  AnalyserFactory
	interval time.Duration
	onSample func(float64)
	log      zerolog.Logger

	mu       sync.Mutex
	analyser Analyser
	loudness float64
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSampler attaches a sampler to player. onSample, when set, receives every
// sample, including the reset to 0 when playback stops.
func NewSampler(player *Player, factory AnalyserFactory, interval time.Duration, onSample func(float64), log zerolog.Logger) *Sampler {
	if interval <= 0 {
		interval = FrameInterval
	}
	s := &Sampler{
		player:   player,
		factory:  factory,
		interval: interval,
		onSample: onSample,
		log:      log.With().Str("component", "sampler").Logger(),
	}
	player.OnEvent(s.handle)
	return s
}

// Loudness returns the latest sample in [0,1].
func (s *Sampler) Loudness() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loudness
}

// Running reports whether the sampling task is active.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Sampler) handle(event PlayerEvent) {
	switch event {
	case PlayerPlay:
		s.start()
	case PlayerPause, PlayerEnded:
		s.stop()
	}
}

func (s *Sampler) start() {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}

	analyser, err := s.ensureAnalyser()
	if err != nil {
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("audio analyser setup failed, sampling skipped")
		return
	}

	if analyser.Suspended() {
		if err := analyser.Resume(); err != nil {
			s.log.Warn().Err(err).Msg("failed to resume audio analyser")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, analyser, done)
}

func (s *Sampler) ensureAnalyser() (Analyser, error) {
	if s.analyser != nil {
		return s.analyser, nil
	}
	analyser, err := s.factory(s.player)
	if err != nil {
		return nil, err
	}
	s.analyser = analyser
	return analyser, nil
}

func (s *Sampler) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	s.publish(0)
}

func (s *Sampler) run(ctx context.Context, analyser Analyser, done chan struct{}) {
	defer close(done)

	bins := make([]byte, analyser.FrequencyBinCount())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		analyser.ByteFrequencyData(bins)
		s.publish(Loudness(bins))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sampler) publish(loudness float64) {
	s.mu.Lock()
	s.loudness = loudness
	s.mu.Unlock()

	if s.onSample != nil {
		s.onSample(loudness)
	}
}

// Loudness maps byte magnitudes to [0,1]: the mean divided by 128, clamped.
func Loudness(bins []byte) float64 {
	if len(bins) == 0 {
		return 0
	}
	var sum int
	for _, b := range bins {
		sum += int(b)
	}
	mean := float64(sum) / float64(len(bins))
	return clampUnit(mean / referenceMagnitude)
}
