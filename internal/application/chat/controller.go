// Package chat is the conversation controller behind the terminal client. It
// owns the history, guards against overlapping requests and drives playback
// and the presentation model.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/relay-api/internal/client"
	"github.com/janhq/relay-api/internal/domain/conversation"
	"github.com/janhq/relay-api/internal/domain/presentation"
)

var (
	// ErrBusy is returned when a request is submitted while another is in flight.
	ErrBusy = errors.New("a request is already in flight")
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("message is empty")
)

// FallbackReply is shown when the relay could not be reached or answered
// with an error status.
const FallbackReply = "Sorry, something went wrong. Please try again."

const (
	voiceLabel  = "🎤 Voice message"
	uploadLabel = "📎 "
	blobPrefix  = "blob:relay-chat/"
)

// Relay is the part of the relay client the controller uses.
type Relay interface {
	Chat(ctx context.Context, message string, history []conversation.Turn, sessionID string) (*client.ChatReply, error)
	ChatAudio(ctx context.Context, audio client.Attachment, sessionID string, acceptAudio bool) (*client.ChatReply, error)
	Upload(ctx context.Context, file client.Attachment) (json.RawMessage, error)
	FetchAudio(ctx context.Context, url string) (*client.Audio, error)
}

// Observer receives controller updates. Callbacks may run on background
// goroutines and must not call back into the controller.
type Observer struct {
	OnTurn   func(conversation.Turn)
	OnState  func(presentation.Model)
	OnReveal func(string)
}

// Config configures a Controller.
type Config struct {
	Relay    Relay
	Sessions conversation.SessionStore
	Player   *presentation.Player
	Analyser presentation.AnalyserFactory

	TypewriterSpeed time.Duration
	SampleInterval  time.Duration

	// AcceptAudio asks the relay to stream audio replies back directly.
	AcceptAudio bool
	// Autoplay plays audio replies as soon as they arrive.
	Autoplay bool

	Observer Observer
}

// Controller runs one chat session.
type Controller struct {
	relay      Relay
	sessions   conversation.SessionStore
	player     *presentation.Player
	sampler    *presentation.Sampler
	typewriter *presentation.Typewriter
	observer   Observer
	log        zerolog.Logger

	acceptAudio bool
	autoplay    bool

	mu        sync.Mutex
	history   *conversation.History
	model     presentation.Model
	inFlight  bool
	sessionID string
	blobs     map[string]*client.Audio
}

// NewController creates a controller with a freshly seeded history.
func NewController(cfg Config, log zerolog.Logger) *Controller {
	c := &Controller{
		relay:       cfg.Relay,
		sessions:    cfg.Sessions,
		player:      cfg.Player,
		observer:    cfg.Observer,
		log:         log.With().Str("component", "chat-controller").Logger(),
		acceptAudio: cfg.AcceptAudio,
		autoplay:    cfg.Autoplay,
		history:     conversation.NewHistory(),
		blobs:       make(map[string]*client.Audio),
	}
	c.typewriter = presentation.NewTypewriter(cfg.TypewriterSpeed, cfg.Observer.OnReveal)
	if cfg.Player != nil && cfg.Analyser != nil {
		c.sampler = presentation.NewSampler(cfg.Player, cfg.Analyser, cfg.SampleInterval, c.onLoudness, log)
	}
	return c
}

// Send relays a typed message. The returned turn is the bot reply; failures
// are turned into a fallback reply rather than an error.
func (c *Controller) Send(ctx context.Context, message string) (conversation.Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return conversation.Turn{}, ErrEmptyMessage
	}

	userTurn := conversation.Turn{Role: conversation.RoleUser, Content: message}
	history, err := c.begin(userTurn, presentation.RequestStarted{})
	if err != nil {
		return conversation.Turn{}, err
	}

	reply, err := c.relay.Chat(ctx, message, history, c.session(ctx))
	turn := c.botTurn(reply, err)
	c.finish(turn, presentation.ResponseReceived{Turn: turn})
	c.afterReply(turn)
	return turn, nil
}

// SendAudio relays a recorded voice message.
func (c *Controller) SendAudio(ctx context.Context, audio client.Attachment) (conversation.Turn, error) {
	userTurn := conversation.Turn{Role: conversation.RoleUser, Content: voiceLabel}
	if _, err := c.begin(userTurn, presentation.RequestStarted{}); err != nil {
		return conversation.Turn{}, err
	}

	reply, err := c.relay.ChatAudio(ctx, audio, c.session(ctx), c.acceptAudio)
	turn := c.botTurn(reply, err)
	c.finish(turn, presentation.ResponseReceived{Turn: turn})
	c.afterReply(turn)
	return turn, nil
}

// Upload forwards a document to the upload workflow.
func (c *Controller) Upload(ctx context.Context, file client.Attachment) (conversation.Turn, error) {
	userTurn := conversation.Turn{Role: conversation.RoleUser, Content: uploadLabel + file.Filename}
	if _, err := c.begin(userTurn, presentation.UploadStarted{}); err != nil {
		return conversation.Turn{}, err
	}

	result, err := c.relay.Upload(ctx, file)
	turn := conversation.Turn{Role: conversation.RoleBot, Content: uploadSummary(file.Filename, result, err)}
	if err != nil {
		c.log.Warn().Err(err).Str("file", file.Filename).Msg("upload failed")
	}
	c.finish(turn, presentation.UploadFinished{Turn: turn})
	c.afterReply(turn)
	return turn, nil
}

// StartRecording enters the listening state. Any playing reply is stopped
// first.
func (c *Controller) StartRecording() {
	if c.player != nil {
		c.player.Pause()
	}
	c.apply(presentation.RecordingStarted{})
}

// StopRecording leaves the listening state.
func (c *Controller) StopRecording() {
	c.apply(presentation.RecordingStopped{})
}

// Play plays the audio attached to turn.
func (c *Controller) Play(ctx context.Context, turn conversation.Turn) error {
	if c.player == nil || !turn.HasAudio() {
		return nil
	}

	audio, err := c.resolveAudio(ctx, turn.AudioURL)
	if err != nil {
		return err
	}

	c.player.Load(&presentation.Clip{URL: turn.AudioURL, ContentType: audio.ContentType, Data: audio.Data})
	return c.player.Play(context.Background())
}

// StopPlayback pauses the player.
func (c *Controller) StopPlayback() {
	if c.player != nil {
		c.player.Pause()
	}
}

// WaitPlayback blocks until the current reply stops playing.
func (c *Controller) WaitPlayback() {
	if c.player != nil {
		c.player.Wait()
	}
}

// History returns all turns including the greeting.
func (c *Controller) History() []conversation.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Turns()
}

// Model returns the current presentation model.
func (c *Controller) Model() presentation.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Busy reports whether a request is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Revealed returns the typewriter view of the latest bot reply.
func (c *Controller) Revealed() string {
	return c.typewriter.Text()
}

// RevealDone is closed when the current reveal completes.
func (c *Controller) RevealDone() <-chan struct{} {
	return c.typewriter.Done()
}

// SessionID returns the session id, creating it when needed.
func (c *Controller) SessionID(ctx context.Context) string {
	return c.session(ctx)
}

// Close stops background work.
func (c *Controller) Close() {
	c.typewriter.Stop()
	if c.player != nil {
		c.player.Pause()
	}
}

func (c *Controller) begin(userTurn conversation.Turn, ev presentation.Event) ([]conversation.Turn, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	history := c.history.Outbound()
	c.history.Append(userTurn)
	c.inFlight = true
	c.model = presentation.Reduce(c.model, ev)
	model := c.model
	c.mu.Unlock()

	c.notifyTurn(userTurn)
	c.notifyState(model)
	return history, nil
}

func (c *Controller) finish(turn conversation.Turn, ev presentation.Event) {
	c.mu.Lock()
	c.history.Append(turn)
	c.inFlight = false
	c.model = presentation.Reduce(c.model, ev)
	model := c.model
	c.mu.Unlock()

	c.notifyTurn(turn)
	c.notifyState(model)
}

func (c *Controller) afterReply(turn conversation.Turn) {
	c.typewriter.Reveal(context.Background(), turn.Content)

	if c.autoplay && turn.HasAudio() {
		if err := c.Play(context.Background(), turn); err != nil {
			c.log.Warn().Err(err).Str("audio_url", turn.AudioURL).Msg("failed to play audio reply")
		}
	}
}

func (c *Controller) botTurn(reply *client.ChatReply, err error) conversation.Turn {
	if err != nil {
		c.log.Error().Err(err).Msg("chat request failed")
		return conversation.Turn{Role: conversation.RoleBot, Content: FallbackReply}
	}

	turn := conversation.Turn{Role: conversation.RoleBot, Content: reply.Response, AudioURL: reply.AudioURL}
	if reply.Audio != nil {
		c.mu.Lock()
		turn.AudioURL = fmt.Sprintf("%s%d", blobPrefix, len(c.blobs)+1)
		c.blobs[turn.AudioURL] = reply.Audio
		c.mu.Unlock()
	}
	return turn
}

func (c *Controller) resolveAudio(ctx context.Context, url string) (*client.Audio, error) {
	c.mu.Lock()
	audio, ok := c.blobs[url]
	c.mu.Unlock()
	if ok {
		return audio, nil
	}
	return c.relay.FetchAudio(ctx, url)
}

func (c *Controller) session(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != "" {
		return c.sessionID
	}

	if c.sessions != nil {
		id, err := conversation.EnsureSession(ctx, c.sessions)
		if err == nil {
			c.sessionID = id
			return id
		}
		c.log.Warn().Err(err).Msg("session store unavailable, using a transient session")
	}
	c.sessionID = conversation.NewSessionID()
	return c.sessionID
}

func (c *Controller) apply(ev presentation.Event) {
	c.mu.Lock()
	c.model = presentation.Reduce(c.model, ev)
	model := c.model
	c.mu.Unlock()
	c.notifyState(model)
}

func (c *Controller) onLoudness(loudness float64) {
	if loudness == 0 {
		c.apply(presentation.PlaybackStopped{})
		return
	}
	c.apply(presentation.PlaybackTick{Loudness: loudness})
}

func (c *Controller) notifyTurn(turn conversation.Turn) {
	if c.observer.OnTurn != nil {
		c.observer.OnTurn(turn)
	}
}

func (c *Controller) notifyState(model presentation.Model) {
	if c.observer.OnState != nil {
		c.observer.OnState(model)
	}
}

func uploadSummary(filename string, result json.RawMessage, err error) string {
	if err != nil {
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) && statusErr.Body != "" {
			return "Upload failed: " + statusErr.Body
		}
		return FallbackReply
	}

	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(result, &body) == nil && strings.TrimSpace(body.Message) != "" {
		return body.Message
	}
	return fmt.Sprintf("Uploaded %s.", filename)
}
