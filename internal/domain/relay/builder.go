package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/janhq/relay-api/internal/domain/conversation"
)

// ErrNotConfigured is returned when the target webhook URL is empty.
var ErrNotConfigured = errors.New("webhook endpoint is not configured")

// Kind classifies a user turn.
type Kind string

const (
	KindText  Kind = "text"
	KindAudio Kind = "audio"
	KindFile  Kind = "file"
)

// Multipart field names understood by the workflow.
const (
	FieldAudio     = "audio"
	FieldFile      = "file"
	FieldSessionID = "sessionId"

	defaultRecordingName = "recording.webm"
	defaultUploadName    = "upload.bin"
	octetStream          = "application/octet-stream"
)

// Attachment is a binary part of a user turn.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Payload is the exact request sent to the workflow.
type Payload struct {
	Kind        Kind
	Endpoint    string
	ContentType string
	Body        []byte
}

// Endpoints holds the configured webhook URLs.
type Endpoints struct {
	Chat   string
	Upload string
}

type textBody struct {
	ChatInput string              `json:"chatInput"`
	History   []conversation.Turn `json:"history"`
	SessionID string              `json:"sessionId"`
}

// Builder produces outbound payloads. It performs no I/O.
type Builder struct {
	endpoints Endpoints
}

// NewBuilder creates a builder for the given endpoints.
func NewBuilder(endpoints Endpoints) *Builder {
	return &Builder{endpoints: endpoints}
}

// Text builds the JSON body for a typed message.
func (b *Builder) Text(message string, history []conversation.Turn, sessionID string) (*Payload, error) {
	if b.endpoints.Chat == "" {
		return nil, ErrNotConfigured
	}
	if history == nil {
		history = []conversation.Turn{}
	}
	body, err := json.Marshal(textBody{
		ChatInput: message,
		History:   history,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal text payload: %w", err)
	}
	return &Payload{
		Kind:        KindText,
		Endpoint:    b.endpoints.Chat,
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// Audio builds a multipart body with the recorded blob and the session id.
func (b *Builder) Audio(audio Attachment, sessionID string) (*Payload, error) {
	if b.endpoints.Chat == "" {
		return nil, ErrNotConfigured
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if len(audio.Data) > 0 {
		if err := writeFilePart(writer, FieldAudio, audio, defaultRecordingName); err != nil {
			return nil, err
		}
	}
	if sessionID != "" {
		if err := writer.WriteField(FieldSessionID, sessionID); err != nil {
			return nil, fmt.Errorf("write session field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return &Payload{
		Kind:        KindAudio,
		Endpoint:    b.endpoints.Chat,
		ContentType: writer.FormDataContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// File builds a multipart body carrying exactly the uploaded file.
func (b *Builder) File(file Attachment) (*Payload, error) {
	if b.endpoints.Upload == "" {
		return nil, ErrNotConfigured
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writeFilePart(writer, FieldFile, file, defaultUploadName); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return &Payload{
		Kind:        KindFile,
		Endpoint:    b.endpoints.Upload,
		ContentType: writer.FormDataContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// writeFilePart keeps the part's own content type; CreateFormFile would
// force application/octet-stream.
func writeFilePart(writer *multipart.Writer, field string, att Attachment, fallbackName string) error {
	filename := att.Filename
	if strings.TrimSpace(filename) == "" {
		filename = fallbackName
	}
	contentType := att.ContentType
	if contentType == "" {
		contentType = octetStream
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(att.Data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
