package handlers

import (
	"github.com/google/wire"

	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/infrastructure/audiostore"
)

// Provider holds all HTTP handlers.
type Provider struct {
	Chat   *ChatHandler
	Upload *UploadHandler
	Audio  *AudioHandler
}

// NewProvider creates a new handler provider.
func NewProvider(service *relay.Service, store audiostore.Store) *Provider {
	return &Provider{
		Chat:   NewChatHandler(service),
		Upload: NewUploadHandler(service),
		Audio:  NewAudioHandler(store),
	}
}

// HandlerProvider provides all handlers for wire.
var HandlerProvider = wire.NewSet(
	NewProvider,
)
