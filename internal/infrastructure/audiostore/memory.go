package audiostore

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"github.com/janhq/relay-api/internal/domain/relay"
)

// DefaultMemoryMaxClips bounds the memory backend when no limit is configured.
const DefaultMemoryMaxClips = 512

// MemoryStore keeps clips in a bounded LRU cache. Expired clips are hidden on
// read and removed by the sweeper; when the cache is full the least recently
// played clip is evicted early.
type MemoryStore struct {
	clips *lru.Cache
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// NewMemoryStore creates an in-memory clip store holding at most maxClips.
func NewMemoryStore(ttl time.Duration, maxClips int, log zerolog.Logger) (*MemoryStore, error) {
	if maxClips <= 0 {
		maxClips = DefaultMemoryMaxClips
	}
	s := &MemoryStore{
		ttl: ttl,
		now: time.Now,
		log: log.With().Str("component", "audio-store").Str("backend", "memory").Logger(),
	}

	clips, err := lru.NewWithEvict(maxClips, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("create clip cache: %w", err)
	}
	s.clips = clips
	return s, nil
}

func (s *MemoryStore) onEvict(key, value interface{}) {
	clip, ok := value.(*relay.AudioClip)
	if !ok || expired(clip.CreatedAt, s.ttl, s.now()) {
		return
	}
	s.log.Debug().Str("clip_id", clip.ID).Msg("live clip evicted by capacity")
}

// Save stores a clip.
func (s *MemoryStore) Save(ctx context.Context, clip *relay.AudioClip) error {
	s.clips.Add(clip.ID, clip)
	return nil
}

// Get retrieves a live clip by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*relay.AudioClip, error) {
	value, ok := s.clips.Get(id)
	if !ok {
		return nil, ErrClipNotFound
	}
	clip := value.(*relay.AudioClip)
	if expired(clip.CreatedAt, s.ttl, s.now()) {
		return nil, ErrClipNotFound
	}
	return clip, nil
}

// DeleteExpired removes clips created before the cutoff.
func (s *MemoryStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	removed := 0
	for _, key := range s.clips.Keys() {
		value, ok := s.clips.Peek(key)
		if !ok {
			continue
		}
		if value.(*relay.AudioClip).CreatedAt.Before(before) {
			if s.clips.Remove(key) {
				removed++
			}
		}
	}
	return removed, nil
}

// Len returns the number of clips held, expired ones included.
func (s *MemoryStore) Len() int {
	return s.clips.Len()
}

// Health always succeeds.
func (s *MemoryStore) Health(ctx context.Context) error {
	return nil
}
