package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/janhq/relay-api/internal/application/chat"
	"github.com/janhq/relay-api/internal/client"
	"github.com/janhq/relay-api/internal/domain/presentation"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "relay-chat",
	Short: "Terminal chat client for relay-api",
	Long: `relay-chat talks to an n8n AI workflow through relay-api.

It keeps a stable session id on disk, sends typed messages with the
conversation so far, uploads documents and plays audio replies.

Examples:
  # Interactive chat
  relay-chat --server http://localhost:8187

  # Send a recorded voice message
  relay-chat voice question.wav --player "ffplay -nodisp -autoexit -loglevel quiet -"

  # Upload a document to the knowledge base
  relay-chat upload handbook.pdf`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runChat,
}

type options struct {
	server      string
	sessionFile string
	speed       time.Duration
	timeout     time.Duration
	player      string
	acceptAudio bool
	verbose     bool
}

var opts options

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(sessionCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", envOr("RELAY_SERVER", "http://localhost:8187"), "relay-api base URL")
	flags.StringVar(&opts.sessionFile, "session-file", "", "Session file (default: <user config dir>/relay-chat/session.json)")
	flags.DurationVar(&opts.speed, "speed", presentation.DefaultTypewriterSpeed, "Typewriter delay per character")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")
	flags.StringVar(&opts.player, "player", "", "Command that plays audio from stdin (default: silent playback)")
	flags.BoolVar(&opts.acceptAudio, "accept-audio", false, "Ask the relay to stream audio replies back directly")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Str("service", "relay-chat").
		Logger()
}

func newSessionStore() (*chat.FileSessionStore, error) {
	path := opts.sessionFile
	if path == "" {
		var err error
		path, err = chat.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
	}
	return chat.NewFileSessionStore(path), nil
}

// newController wires the controller with a terminal renderer.
func newController(renderer *renderer, log zerolog.Logger) (*chat.Controller, error) {
	sessions, err := newSessionStore()
	if err != nil {
		return nil, err
	}

	output, err := newOutput(opts.player)
	if err != nil {
		return nil, err
	}

	return chat.NewController(chat.Config{
		Relay:           client.New(opts.server, opts.timeout),
		Sessions:        sessions,
		Player:          presentation.NewPlayer(output, log),
		Analyser:        presentation.NewPCMAnalyser,
		TypewriterSpeed: opts.speed,
		SampleInterval:  presentation.FrameInterval,
		AcceptAudio:     opts.acceptAudio,
		Autoplay:        true,
		Observer:        renderer.observer(),
	}, log), nil
}
