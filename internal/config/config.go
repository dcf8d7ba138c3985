package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Audio store backends.
const (
	AudioBackendMemory = "memory"
	AudioBackendLocal  = "local"
	AudioBackendRedis  = "redis"
	AudioBackendS3     = "s3"
)

// AudioRoutePrefix is where stored clips are served.
const AudioRoutePrefix = "/v1/audio/"

// Config holds all configuration for the relay-api service.
type Config struct {
	// Service settings
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"relay-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"RELAY_API_PORT" envDefault:"8187"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// OpenTelemetry
	EnableTracing    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	TraceSampleRatio float64 `env:"OTEL_TRACE_SAMPLE_RATIO" envDefault:"1"`

	// n8n webhooks. Both are optional: an empty URL makes the matching
	// route answer with a fixed configuration error instead of calling out.
	WebhookURL       string        `env:"N8N_WEBHOOK_URL"`
	UploadWebhookURL string        `env:"N8N_UPLOAD_WEBHOOK_URL"`
	WebhookTimeout   time.Duration `env:"N8N_REQUEST_TIMEOUT" envDefault:"120s"`
	MaxResponseBytes int64         `env:"N8N_MAX_RESPONSE_BYTES" envDefault:"26214400"`
	MaxUploadBytes   int64         `env:"RELAY_MAX_UPLOAD_BYTES" envDefault:"20971520"`

	// Audio clip storage
	AudioStoreBackend   string        `env:"AUDIO_STORE_BACKEND" envDefault:"memory"` // memory, local, redis or s3
	AudioClipTTL        time.Duration `env:"AUDIO_CLIP_TTL" envDefault:"1h"`
	AudioPublicBaseURL  string        `env:"AUDIO_PUBLIC_BASE_URL"` // e.g. https://chat.example.com; empty keeps URLs relative
	AudioLocalPath      string        `env:"AUDIO_LOCAL_PATH" envDefault:"./audio-data"`
	AudioSweepInterval  time.Duration `env:"AUDIO_SWEEP_INTERVAL" envDefault:"1m"`
	AudioMemoryMaxClips int           `env:"AUDIO_MEMORY_MAX_CLIPS" envDefault:"512"`
	RedisURL            string        `env:"REDIS_URL"`
	AudioS3Endpoint     string        `env:"AUDIO_S3_ENDPOINT"`
	AudioS3Region       string        `env:"AUDIO_S3_REGION" envDefault:"us-west-2"`
	AudioS3Bucket       string        `env:"AUDIO_S3_BUCKET"`
	AudioS3AccessKeyID  string        `env:"AUDIO_S3_ACCESS_KEY_ID"`
	AudioS3SecretKey    string        `env:"AUDIO_S3_SECRET_ACCESS_KEY"`
	AudioS3UsePathStyle bool          `env:"AUDIO_S3_USE_PATH_STYLE" envDefault:"true"`

	// Browser session cookie
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"relay_session"`
	SessionCookieMaxAge time.Duration `env:"SESSION_COOKIE_MAX_AGE" envDefault:"8760h"`
	CORSAllowOrigins    []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.WebhookURL = strings.TrimSpace(cfg.WebhookURL)
	cfg.UploadWebhookURL = strings.TrimSpace(cfg.UploadWebhookURL)
	cfg.AudioStoreBackend = strings.ToLower(strings.TrimSpace(cfg.AudioStoreBackend))
	cfg.AudioPublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.AudioPublicBaseURL), "/")

	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = 25 * 1024 * 1024
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 * 1024 * 1024
	}
	if cfg.TraceSampleRatio < 0 || cfg.TraceSampleRatio > 1 {
		return nil, fmt.Errorf("OTEL_TRACE_SAMPLE_RATIO must be between 0 and 1")
	}
	if cfg.AudioClipTTL <= 0 {
		return nil, fmt.Errorf("AUDIO_CLIP_TTL must be positive")
	}

	switch cfg.AudioStoreBackend {
	case "", AudioBackendMemory:
		cfg.AudioStoreBackend = AudioBackendMemory
	case AudioBackendLocal:
		if strings.TrimSpace(cfg.AudioLocalPath) == "" {
			return nil, fmt.Errorf("AUDIO_LOCAL_PATH is required when AUDIO_STORE_BACKEND is local")
		}
	case AudioBackendRedis:
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return nil, fmt.Errorf("REDIS_URL is required when AUDIO_STORE_BACKEND is redis")
		}
	case AudioBackendS3:
		if strings.TrimSpace(cfg.AudioS3Bucket) == "" {
			return nil, fmt.Errorf("AUDIO_S3_BUCKET is required when AUDIO_STORE_BACKEND is s3")
		}
	default:
		return nil, fmt.Errorf("unsupported AUDIO_STORE_BACKEND %q", cfg.AudioStoreBackend)
	}

	return cfg, nil
}

// Addr returns the HTTP server address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// ChatConfigured reports whether the chat webhook URL is set.
func (c *Config) ChatConfigured() bool {
	return c.WebhookURL != ""
}

// UploadConfigured reports whether the upload webhook URL is set.
func (c *Config) UploadConfigured() bool {
	return c.UploadWebhookURL != ""
}

// AudioURL returns the URL a stored clip is served from.
func (c *Config) AudioURL(id string) string {
	return c.AudioPublicBaseURL + AudioRoutePrefix + id
}
