package handlers

import (
	"context"
	"errors"

	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/infrastructure/audiostore"
	"github.com/janhq/relay-api/internal/infrastructure/metrics"
	"github.com/janhq/relay-api/internal/utils/clipid"
	"github.com/janhq/relay-api/internal/utils/platformerrors"
)

// AudioHandler serves stored clips.
type AudioHandler struct {
	store relay.AudioStore
}

// NewAudioHandler creates a new audio handler.
func NewAudioHandler(store relay.AudioStore) *AudioHandler {
	return &AudioHandler{store: store}
}

// GetClip returns a stored clip. Malformed ids are reported as not found.
func (h *AudioHandler) GetClip(ctx context.Context, id string) (*relay.AudioClip, error) {
	if !clipid.IsValid(id) {
		return nil, audiostore.ErrClipNotFound
	}
	clip, err := h.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, audiostore.ErrClipNotFound) {
			return nil, err
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnavailable, "failed to load audio clip", err)
	}
	metrics.RecordClipServed(len(clip.Data))
	return clip, nil
}
