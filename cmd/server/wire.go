//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/relay-api/internal/config"
	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/infrastructure/audiostore"
	"github.com/janhq/relay-api/internal/infrastructure/webhook"
	"github.com/janhq/relay-api/internal/interfaces"
	"github.com/janhq/relay-api/internal/utils/clipid"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvideAudioStore,
	ProvideSweeper,
	ProvideTransport,

	// Domain providers
	ProvideBuilder,
	ProvideClassifier,
	relay.NewService,

	// Interface providers
	interfaces.InterfacesProvider,

	// Application
	NewApplication,
)

// ProvideAudioStore provides the configured audio clip store.
func ProvideAudioStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (audiostore.Store, error) {
	return audiostore.New(ctx, cfg, log)
}

// ProvideSweeper provides the clip expiry sweeper.
func ProvideSweeper(store audiostore.Store, cfg *config.Config, log zerolog.Logger) *audiostore.Sweeper {
	return audiostore.NewSweeper(store, cfg.AudioClipTTL, cfg.AudioSweepInterval, log)
}

// ProvideTransport provides the n8n webhook client.
func ProvideTransport(cfg *config.Config, log zerolog.Logger) relay.Transport {
	return webhook.NewClient(cfg.WebhookTimeout, log)
}

// ProvideBuilder provides the outbound payload builder.
func ProvideBuilder(cfg *config.Config) *relay.Builder {
	return relay.NewBuilder(relay.Endpoints{Chat: cfg.WebhookURL, Upload: cfg.UploadWebhookURL})
}

// ProvideClassifier provides the workflow response classifier.
func ProvideClassifier(store audiostore.Store, cfg *config.Config, log zerolog.Logger) *relay.Classifier {
	return relay.NewClassifier(relay.ClassifierConfig{
		Store:    store,
		NewID:    clipid.New,
		URLFor:   cfg.AudioURL,
		MaxBytes: cfg.MaxResponseBytes,
	}, log)
}

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
