package audiostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/relay-api/internal/config"
	"github.com/janhq/relay-api/internal/domain/relay"
)

// ErrClipNotFound is returned for unknown or expired clips.
var ErrClipNotFound = errors.New("audio clip not found")

// Store keeps audio clips for later playback.
type Store interface {
	relay.AudioStore
	Health(ctx context.Context) error
}

// Expirer is implemented by stores without native expiry. The sweeper calls
// it periodically.
type Expirer interface {
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// New creates the store selected by AUDIO_STORE_BACKEND.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Store, error) {
	switch cfg.AudioStoreBackend {
	case config.AudioBackendMemory:
		return NewMemoryStore(cfg.AudioClipTTL, cfg.AudioMemoryMaxClips, log)
	case config.AudioBackendLocal:
		return NewLocalStore(cfg.AudioLocalPath, log)
	case config.AudioBackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL, cfg.AudioClipTTL, log)
	case config.AudioBackendS3:
		return NewS3Store(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported audio store backend %q", cfg.AudioStoreBackend)
	}
}

func expired(createdAt time.Time, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(createdAt) > ttl
}
