package audiostore

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically deletes expired clips from stores that lack native
// expiry.
type Sweeper struct {
	expirer  Expirer
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewSweeper creates a sweeper. It returns nil when the store expires clips
// on its own; a nil sweeper's Run returns immediately.
func NewSweeper(store Store, ttl, interval time.Duration, log zerolog.Logger) *Sweeper {
	expirer, ok := store.(Expirer)
	if !ok || interval <= 0 {
		return nil
	}
	return &Sweeper{
		expirer:  expirer,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		log:      log.With().Str("component", "audio-sweeper").Logger(),
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.log.Info().Dur("interval", s.interval).Dur("ttl", s.ttl).Msg("audio sweeper started")
	defer s.log.Info().Msg("audio sweeper stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single expiry pass.
func (s *Sweeper) Sweep(ctx context.Context) int {
	removed, err := s.expirer.DeleteExpired(ctx, s.now().Add(-s.ttl))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to delete expired clips")
	}
	if removed > 0 {
		s.log.Info().Int("deleted", removed).Msg("expired clips removed")
	}
	return removed
}
