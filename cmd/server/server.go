// @title           Relay API
// @version         1.0
// @description     Chat relay between a browser chat UI and an n8n AI workflow.
// @description     Forwards typed and spoken turns, normalizes every workflow reply and serves captured audio clips.

// @contact.name   Jan Team
// @contact.url    https://github.com/janhq/jan-server

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8187
// @BasePath  /v1

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/janhq/relay-api/internal/config"
	"github.com/janhq/relay-api/internal/domain/relay"
	"github.com/janhq/relay-api/internal/infrastructure/audiostore"
	"github.com/janhq/relay-api/internal/infrastructure/logger"
	"github.com/janhq/relay-api/internal/infrastructure/observability"
	"github.com/janhq/relay-api/internal/infrastructure/webhook"
	"github.com/janhq/relay-api/internal/interfaces/httpserver"
	"github.com/janhq/relay-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/relay-api/internal/interfaces/httpserver/routes"
	"github.com/janhq/relay-api/internal/utils/clipid"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	sweeper    *audiostore.Sweeper
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, sweeper *audiostore.Sweeper, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		sweeper:    sweeper,
		log:        log,
	}
}

// Start runs the HTTP server and the clip sweeper until ctx is cancelled or
// one of them fails.
func (a *Application) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return a.httpServer.Run(ctx)
	})
	eg.Go(func() error {
		return a.sweeper.Run(ctx)
	})
	return eg.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup observability
	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	// Initialize audio clip store
	store, err := audiostore.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.AudioStoreBackend).Msg("failed to initialize audio store")
	}
	sweeper := audiostore.NewSweeper(store, cfg.AudioClipTTL, cfg.AudioSweepInterval, log)

	if !cfg.ChatConfigured() {
		log.Warn().Msg("N8N_WEBHOOK_URL is not set, chat requests will be answered with a configuration message")
	}
	if !cfg.UploadConfigured() {
		log.Warn().Msg("N8N_UPLOAD_WEBHOOK_URL is not set, uploads will be rejected")
	}

	// Initialize relay service
	service := relay.NewService(
		relay.NewBuilder(relay.Endpoints{Chat: cfg.WebhookURL, Upload: cfg.UploadWebhookURL}),
		webhook.NewClient(cfg.WebhookTimeout, log),
		relay.NewClassifier(relay.ClassifierConfig{
			Store:    store,
			NewID:    clipid.New,
			URLFor:   cfg.AudioURL,
			MaxBytes: cfg.MaxResponseBytes,
		}, log),
		log,
	)

	// Initialize HTTP server
	handlerProvider := handlers.NewProvider(service, store)
	routeProvider := routes.NewProvider(handlerProvider, cfg)
	httpServer := httpserver.New(cfg, log, routeProvider, store)

	// Create and start application
	app := NewApplication(httpServer, sweeper, log)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Str("audio_store", cfg.AudioStoreBackend).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
