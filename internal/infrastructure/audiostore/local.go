package audiostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/utils/clipid"
)

const metaSuffix = ".json"

type clipMeta struct {
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// LocalStore keeps clips on the local filesystem, one data file and one
// metadata file per clip.
type LocalStore struct {
	basePath string
	log      zerolog.Logger
}

// NewLocalStore creates a filesystem clip store rooted at basePath.
func NewLocalStore(basePath string, log zerolog.Logger) (*LocalStore, error) {
	logger := log.With().Str("component", "audio-store").Str("backend", "local").Logger()

	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("local audio store path is empty")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	logger.Info().Str("path", basePath).Msg("local audio store initialized")
	return &LocalStore{basePath: basePath, log: logger}, nil
}

// Save writes the clip bytes and its metadata.
func (l *LocalStore) Save(ctx context.Context, clip *relay.AudioClip) error {
	if !clipid.IsValid(clip.ID) {
		return fmt.Errorf("invalid clip id %q", clip.ID)
	}
	if err := os.WriteFile(l.dataPath(clip.ID), clip.Data, 0644); err != nil {
		return fmt.Errorf("failed to write clip: %w", err)
	}
	meta, err := json.Marshal(clipMeta{ContentType: clip.ContentType, CreatedAt: clip.CreatedAt})
	if err != nil {
		return fmt.Errorf("failed to encode clip metadata: %w", err)
	}
	if err := os.WriteFile(l.dataPath(clip.ID)+metaSuffix, meta, 0644); err != nil {
		_ = os.Remove(l.dataPath(clip.ID))
		return fmt.Errorf("failed to write clip metadata: %w", err)
	}

	l.log.Debug().Str("clip_id", clip.ID).Int("bytes", len(clip.Data)).Msg("clip written")
	return nil
}

// Get reads a clip. A missing metadata file falls back to content sniffing.
func (l *LocalStore) Get(ctx context.Context, id string) (*relay.AudioClip, error) {
	if !clipid.IsValid(id) {
		return nil, ErrClipNotFound
	}
	data, err := os.ReadFile(l.dataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrClipNotFound
		}
		return nil, fmt.Errorf("failed to read clip: %w", err)
	}

	clip := &relay.AudioClip{ID: id, Data: data}
	if raw, err := os.ReadFile(l.dataPath(id) + metaSuffix); err == nil {
		var meta clipMeta
		if err := json.Unmarshal(raw, &meta); err == nil {
			clip.ContentType = meta.ContentType
			clip.CreatedAt = meta.CreatedAt
		}
	}
	if clip.ContentType == "" {
		clip.ContentType = mimetype.Detect(data).String()
	}
	if clip.CreatedAt.IsZero() {
		if created, err := clipid.Time(id); err == nil {
			clip.CreatedAt = created
		}
	}
	return clip, nil
}

// DeleteExpired removes clips whose id timestamp is before the cutoff.
func (l *LocalStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to list audio directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, metaSuffix) || !clipid.IsValid(name) {
			continue
		}
		created, err := clipid.Time(name)
		if err != nil || !created.Before(before) {
			continue
		}
		if err := os.Remove(l.dataPath(name)); err != nil && !os.IsNotExist(err) {
			l.log.Warn().Err(err).Str("clip_id", name).Msg("failed to delete expired clip")
			continue
		}
		_ = os.Remove(l.dataPath(name) + metaSuffix)
		removed++
	}
	return removed, nil
}

// Health checks the directory is writable.
func (l *LocalStore) Health(ctx context.Context) error {
	testFile := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("audio directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}

func (l *LocalStore) dataPath(id string) string {
	return filepath.Join(l.basePath, id)
}
