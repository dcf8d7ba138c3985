package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"github.com/janhq/relay-api/internal/domain/conversation"
)

// ErrUploadFailed is returned when the upload workflow call fails for any
// reason past validation. Details are logged, never returned.
var ErrUploadFailed = errors.New("failed to process upload")

// Transport delivers a payload to the workflow.
type Transport interface {
	Post(ctx context.Context, payload *Payload) (*UpstreamResponse, error)
}

// ChatRequest is one user turn to relay.
type ChatRequest struct {
	Kind      Kind
	Message   string
	History   []conversation.Turn
	SessionID string
	Audio     Attachment
	// PreferAudio asks for binary audio bodies to be handed back raw.
	PreferAudio bool
}

// UploadRequest carries a single file for the upload workflow.
type UploadRequest struct {
	File Attachment
}

// UploadResult is the JSON document returned to the uploader.
type UploadResult struct {
	Payload json.RawMessage
}

// Service relays user turns to the workflow and normalizes its replies.
type Service struct {
	builder    *Builder
	transport  Transport
	classifier *Classifier
	log        zerolog.Logger
}

// NewService creates a relay service.
func NewService(builder *Builder, transport Transport, classifier *Classifier, log zerolog.Logger) *Service {
	return &Service{
		builder:    builder,
		transport:  transport,
		classifier: classifier,
		log:        log.With().Str("component", "relay-service").Logger(),
	}
}

// ChatConfigured reports whether a chat endpoint is set.
func (s *Service) ChatConfigured() bool {
	return s.builder.endpoints.Chat != ""
}

// UploadConfigured reports whether an upload endpoint is set.
func (s *Service) UploadConfigured() bool {
	return s.builder.endpoints.Upload != ""
}

// Chat relays a text or audio turn. Only an unknown kind is returned as an
// error; every other failure becomes the reply text.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (Reply, error) {
	var (
		payload *Payload
		err     error
	)
	switch req.Kind {
	case KindText:
		payload, err = s.builder.Text(req.Message, req.History, req.SessionID)
	case KindAudio:
		payload, err = s.builder.Audio(req.Audio, req.SessionID)
	default:
		return Reply{}, fmt.Errorf("unsupported chat kind %q", req.Kind)
	}
	if errors.Is(err, ErrNotConfigured) {
		return Reply{
			Response: UniformResponse{Text: MsgNotConfigured.Text()},
			Outcome:  OutcomeNotConfigured,
			Code:     MsgNotConfigured,
		}, nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("kind", string(req.Kind)).Msg("build workflow payload")
		return failed(MsgServerError), nil
	}

	s.log.Info().
		Str("kind", string(req.Kind)).
		Str("session_id", req.SessionID).
		Int("history", len(req.History)).
		Msg("relaying turn to workflow")

	resp, err := s.transport.Post(ctx, payload)
	if err != nil {
		code := transportFailureCode(err)
		s.log.Error().Err(err).Str("code", string(code)).Msg("workflow request failed")
		return failed(code), nil
	}
	defer closeBody(resp)

	reply := s.classifier.Classify(ctx, *resp, req.PreferAudio)
	s.log.Info().
		Int("status", resp.StatusCode).
		Str("outcome", string(reply.Outcome)).
		Msg("workflow responded")
	return reply, nil
}

// Upload forwards a single file to the upload workflow.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	payload, err := s.builder.File(req.File)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return UploadResult{}, err
		}
		s.log.Error().Err(err).Msg("build upload payload")
		return UploadResult{}, ErrUploadFailed
	}

	resp, err := s.transport.Post(ctx, payload)
	if err != nil {
		s.log.Error().Err(err).Msg("upload request failed")
		return UploadResult{}, ErrUploadFailed
	}
	defer closeBody(resp)

	body, err := s.classifier.readAll(resp.Body)
	if err != nil {
		s.log.Error().Err(err).Msg("read upload response")
		return UploadResult{}, ErrUploadFailed
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncate(string(body), 200)).
			Msg("upload workflow returned an error")
		return UploadResult{}, ErrUploadFailed
	}

	if json.Valid(body) {
		return UploadResult{Payload: json.RawMessage(body)}, nil
	}
	wrapped, err := json.Marshal(map[string]string{"message": string(body)})
	if err != nil {
		return UploadResult{}, ErrUploadFailed
	}
	return UploadResult{Payload: wrapped}, nil
}

func transportFailureCode(err error) MessageCode {
	switch {
	case errors.Is(err, context.Canceled):
		return MsgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return MsgTimeout
	}
	if strings.Contains(strings.ToLower(err.Error()), "timeout") {
		return MsgTimeout
	}
	return MsgServerError
}

func closeBody(resp *UpstreamResponse) {
	if resp == nil || resp.Body == nil {
		return
	}
	_ = resp.Body.Close()
}
