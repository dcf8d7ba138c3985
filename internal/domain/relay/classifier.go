package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// Outcome names the branch the classifier took. Used for logging and metrics.
type Outcome string

const (
	OutcomeUpstreamError Outcome = "upstream_error"
	OutcomeAudio         Outcome = "audio"
	OutcomeAudioRaw      Outcome = "audio_passthrough"
	OutcomeStructured    Outcome = "structured"
	OutcomeRawText       Outcome = "raw_text"
	OutcomeEmpty         Outcome = "empty"
	OutcomeFailed        Outcome = "failed"
	OutcomeNotConfigured Outcome = "not_configured"
)

var errBodyTooLarge = errors.New("response body exceeds limit")

// textFields are tried in order for the reply text.
var textFields = []string{"output", "text", "response", "message", "content"}

// audioURLFields are tried in order for a playable URL.
var audioURLFields = []string{"audioUrl", "audio"}

// UniformResponse is the normalized reply every classifier branch produces.
type UniformResponse struct {
	Text     string
	AudioURL string
}

// RawAudio is an audio body handed back untouched to a client that asked for
// binary audio.
type RawAudio struct {
	ContentType string
	Data        []byte
	// HeaderText is the side-channel header value as received, undecoded.
	HeaderText string
}

// Reply is the classifier result.
type Reply struct {
	Response UniformResponse
	Outcome  Outcome
	Code     MessageCode
	Raw      *RawAudio
}

// UpstreamResponse is the raw response from the workflow. The caller owns Body.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// AudioClip is a stored binary audio response.
type AudioClip struct {
	ID          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// AudioStore keeps audio clips addressable by id.
type AudioStore interface {
	Save(ctx context.Context, clip *AudioClip) error
	Get(ctx context.Context, id string) (*AudioClip, error)
}

// ClassifierConfig wires the classifier's collaborators.
type ClassifierConfig struct {
	Store    AudioStore
	NewID    func() string
	URLFor   func(id string) string
	MaxBytes int64
}

// Classifier turns workflow responses into uniform replies.
type Classifier struct {
	store    AudioStore
	newID    func() string
	urlFor   func(id string) string
	maxBytes int64
	log      zerolog.Logger
}

// NewClassifier creates a classifier.
func NewClassifier(cfg ClassifierConfig, log zerolog.Logger) *Classifier {
	return &Classifier{
		store:    cfg.Store,
		newID:    cfg.NewID,
		urlFor:   cfg.URLFor,
		maxBytes: cfg.MaxBytes,
		log:      log.With().Str("component", "response-classifier").Logger(),
	}
}

// Classify decodes resp. It never fails: every branch yields a renderable reply.
// With passthrough set, audio bodies are returned raw instead of being stored.
func (c *Classifier) Classify(ctx context.Context, resp UpstreamResponse, passthrough bool) Reply {
	if resp.Header == nil {
		resp.Header = http.Header{}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classifyFailure(resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if isAudioContentType(contentType) {
		return c.classifyAudio(ctx, resp, contentType, passthrough)
	}

	body, err := c.readAll(resp.Body)
	if err != nil {
		c.log.Error().Err(err).Msg("read workflow response")
		return failed(MsgServerError)
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		c.log.Warn().Msg("empty response from workflow")
		return Reply{
			Response: UniformResponse{Text: MsgEmptyResponse.Text()},
			Outcome:  OutcomeEmpty,
			Code:     MsgEmptyResponse,
		}
	}

	if !json.Valid(body) {
		return Reply{Response: UniformResponse{Text: text}, Outcome: OutcomeRawText}
	}

	return Reply{
		Response: UniformResponse{
			Text:     ExtractText(body),
			AudioURL: ExtractAudioURL(body),
		},
		Outcome: OutcomeStructured,
	}
}

func (c *Classifier) classifyFailure(resp UpstreamResponse) Reply {
	body, err := c.readAll(resp.Body)
	if err != nil {
		c.log.Warn().Err(err).Int("status", resp.StatusCode).Msg("read workflow error body")
	}
	c.log.Error().
		Int("status", resp.StatusCode).
		Str("body", truncate(string(body), 200)).
		Msg("workflow returned an error")

	t := TranslateError(resp.StatusCode, string(body))
	return Reply{
		Response: UniformResponse{Text: t.Text},
		Outcome:  OutcomeUpstreamError,
		Code:     t.Code,
	}
}

func (c *Classifier) classifyAudio(ctx context.Context, resp UpstreamResponse, contentType string, passthrough bool) Reply {
	data, err := c.readAll(resp.Body)
	if err != nil {
		c.log.Error().Err(err).Msg("read workflow audio")
		return failed(MsgServerError)
	}

	if passthrough {
		raw, _ := SideChannelText(resp.Header)
		return Reply{
			Response: UniformResponse{Text: raw},
			Outcome:  OutcomeAudioRaw,
			Raw: &RawAudio{
				ContentType: contentType,
				Data:        data,
				HeaderText:  raw,
			},
		}
	}

	text, decodeErr := resolveSideChannel(resp.Header)
	if decodeErr != nil {
		c.log.Warn().Err(decodeErr).Msg("side-channel text not decodable, using raw value")
	}

	clip := &AudioClip{
		ID:          c.newID(),
		ContentType: playableContentType(contentType, data),
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	if err := c.store.Save(ctx, clip); err != nil {
		c.log.Error().Err(err).Str("clip_id", clip.ID).Msg("store audio clip")
		return failed(MsgServerError)
	}

	c.log.Debug().
		Str("clip_id", clip.ID).
		Str("content_type", clip.ContentType).
		Int("bytes", len(data)).
		Msg("audio clip stored")

	return Reply{
		Response: UniformResponse{Text: text, AudioURL: c.urlFor(clip.ID)},
		Outcome:  OutcomeAudio,
	}
}

func (c *Classifier) readAll(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	if c.maxBytes <= 0 {
		return io.ReadAll(body)
	}
	data, err := io.ReadAll(io.LimitReader(body, c.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", errBodyTooLarge, c.maxBytes)
	}
	return data, nil
}

// ExtractText pulls the reply text out of a valid JSON body. Objects and
// arrays are returned as compacted source text so the workflow's key order
// is kept; the whole body is the last resort.
func ExtractText(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, name := range textFields {
			if raw, present := fields[name]; present && truthyRaw(raw) {
				return rawText(raw)
			}
		}
	}
	return rawText(body)
}

// ExtractAudioURL checks audioUrl then audio for a playable URL.
func ExtractAudioURL(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, name := range audioURLFields {
		var s string
		if raw, ok := fields[name]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

func truthyRaw(raw json.RawMessage) bool {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return false
	}
	return truthy(value)
}

// rawText unquotes JSON strings and compacts everything else.
func rawText(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// truthy follows JavaScript truthiness for decoded JSON values.
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0
	default:
		return true
	}
}

func isAudioContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "audio/") || strings.Contains(ct, octetStream)
}

// playableContentType sniffs generic binary payloads so clips are served
// with a type media players accept.
func playableContentType(declared string, data []byte) string {
	if !strings.Contains(strings.ToLower(declared), octetStream) {
		return declared
	}
	detected := mimetype.Detect(data)
	if strings.HasPrefix(detected.String(), "audio/") {
		return detected.String()
	}
	return declared
}

func failed(code MessageCode) Reply {
	return Reply{
		Response: UniformResponse{Text: code.Text()},
		Outcome:  OutcomeFailed,
		Code:     code,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
