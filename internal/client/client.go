// Package client talks to a running relay-api over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/janhq/relay-api/internal/domain/conversation"
	"github.com/janhq/relay-api/internal/domain/relay"
)

const (
	chatPath   = "/v1/chat"
	uploadPath = "/v1/upload"
)

// StatusError is returned when the relay answers with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Body)
}

// Audio is a binary audio body.
type Audio struct {
	ContentType string
	Data        []byte
}

// Attachment is a file sent as a multipart part.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ChatReply is the uniform chat response. Audio is set instead of AudioURL
// when the relay streamed the clip back directly.
type ChatReply struct {
	Response string `json:"response"`
	AudioURL string `json:"audioUrl,omitempty"`
	Audio    *Audio `json:"-"`
}

type chatRequest struct {
	Message         string              `json:"message"`
	PreviousHistory []conversation.Turn `json:"previousHistory"`
	SessionID       string              `json:"sessionId,omitempty"`
}

// Client is a Resty-backed relay-api client.
type Client struct {
	baseURL    string
	httpClient *resty.Client
}

// New creates a client for the relay at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("User-Agent", "relay-chat/1.0").
			SetTimeout(timeout),
	}
}

// BaseURL returns the relay address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends a typed message with the history that preceded it.
func (c *Client) Chat(ctx context.Context, message string, history []conversation.Turn, sessionID string) (*ChatReply, error) {
	if history == nil {
		history = []conversation.Turn{}
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetBody(chatRequest{Message: message, PreviousHistory: history, SessionID: sessionID}).
		Post(chatPath)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	return decodeChatReply(resp)
}

// ChatAudio sends a recorded voice message. With acceptAudio the relay may
// stream an audio reply back instead of storing it.
func (c *Client) ChatAudio(ctx context.Context, audio Attachment, sessionID string, acceptAudio bool) (*ChatReply, error) {
	accept := "application/json"
	if acceptAudio {
		accept = "audio/*, application/json;q=0.9"
	}

	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", accept).
		SetMultipartField(relay.FieldAudio, audio.Filename, audio.ContentType, bytes.NewReader(audio.Data))
	if sessionID != "" {
		req.SetMultipartFormData(map[string]string{relay.FieldSessionID: sessionID})
	}

	resp, err := req.Post(chatPath)
	if err != nil {
		return nil, fmt.Errorf("audio chat request failed: %w", err)
	}
	return decodeChatReply(resp)
}

// Upload forwards a document and returns the workflow's JSON result.
func (c *Client) Upload(ctx context.Context, file Attachment) (json.RawMessage, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetMultipartField(relay.FieldFile, file.Filename, file.ContentType, bytes.NewReader(file.Data)).
		Post(uploadPath)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	if resp.IsError() {
		var body struct {
			Error string `json:"error"`
		}
		message := resp.String()
		if json.Unmarshal(resp.Body(), &body) == nil && body.Error != "" {
			message = body.Error
		}
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: message}
	}
	return json.RawMessage(resp.Body()), nil
}

// FetchAudio downloads a clip. Relative URLs resolve against the relay.
func (c *Client) FetchAudio(ctx context.Context, url string) (*Audio, error) {
	if strings.HasPrefix(url, "/") {
		url = c.baseURL + url
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch audio failed: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: resp.Status()}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read audio body: %w", err)
	}
	return &Audio{ContentType: resp.Header().Get("Content-Type"), Data: data}, nil
}

func decodeChatReply(resp *resty.Response) (*ChatReply, error) {
	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	contentType := resp.Header().Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if strings.HasPrefix(mediaType, "audio/") {
		text := relay.AudioPlaceholder
		if raw := resp.Header().Get(relay.HeaderN8NText); raw != "" {
			decoded, err := relay.DecodeSideChannel(raw)
			if err != nil {
				decoded = raw
			}
			text = decoded
		}
		return &ChatReply{
			Response: text,
			Audio:    &Audio{ContentType: contentType, Data: resp.Body()},
		}, nil
	}

	var reply ChatReply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return nil, fmt.Errorf("decode chat reply: %w", err)
	}
	return &reply, nil
}
