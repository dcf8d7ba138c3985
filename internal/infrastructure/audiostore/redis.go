package audiostore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/janhq/relay-api/internal/domain/relay"
)

const (
	redisKeyPrefix      = "relay:audio:"
	redisFieldData      = "data"
	redisFieldType      = "content_type"
	redisFieldCreatedAt = "created_at"
)

// RedisStore keeps clips in Redis hashes that expire natively.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration, log zerolog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	store := newRedisStore(redis.NewClient(opts), ttl, log)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.client.Ping(pingCtx).Err(); err != nil {
		_ = store.client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	store.log.Info().Str("addr", opts.Addr).Dur("ttl", ttl).Msg("redis audio store initialized")
	return store, nil
}

func newRedisStore(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "audio-store").Str("backend", "redis").Logger(),
	}
}

// Save writes the clip hash and its expiry in one transaction.
func (r *RedisStore) Save(ctx context.Context, clip *relay.AudioClip) error {
	key := clipKey(clip.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			redisFieldData, clip.Data,
			redisFieldType, clip.ContentType,
			redisFieldCreatedAt, clip.CreatedAt.UnixMilli(),
		)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store clip in redis: %w", err)
	}
	return nil
}

// Get reads a clip hash.
func (r *RedisStore) Get(ctx context.Context, id string) (*relay.AudioClip, error) {
	fields, err := r.client.HGetAll(ctx, clipKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrClipNotFound
		}
		return nil, fmt.Errorf("failed to read clip from redis: %w", err)
	}
	return clipFromHash(id, fields)
}

// Health pings Redis.
func (r *RedisStore) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func clipKey(id string) string {
	return redisKeyPrefix + id
}

func clipFromHash(id string, fields map[string]string) (*relay.AudioClip, error) {
	data, ok := fields[redisFieldData]
	if !ok {
		return nil, ErrClipNotFound
	}
	clip := &relay.AudioClip{
		ID:          id,
		ContentType: fields[redisFieldType],
		Data:        []byte(data),
	}
	if ms, err := strconv.ParseInt(fields[redisFieldCreatedAt], 10, 64); err == nil {
		clip.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return clip, nil
}
