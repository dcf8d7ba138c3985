// Package platformerrors carries typed errors from the infrastructure and
// handler layers up to the HTTP boundary of the non-chat routes.
// Chat turns never surface these: they are translated to user-safe text by
// the relay package.
package platformerrors

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrorType is the category of an error.
type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeInternal    ErrorType = "INTERNAL"
)

type typeInfo struct {
	status int
	wire   string
	quiet  bool
}

var types = map[ErrorType]typeInfo{
	ErrorTypeNotFound:    {http.StatusNotFound, "not_found_error", true},
	ErrorTypeUnavailable: {http.StatusServiceUnavailable, "unavailable_error", false},
	ErrorTypeInternal:    {http.StatusInternalServerError, "internal_error", false},
}

func lookup(t ErrorType) typeInfo {
	if info, ok := types[t]; ok {
		return info
	}
	return types[ErrorTypeInternal]
}

// Layer is the application layer an error was raised in.
type Layer string

const (
	LayerHandler        Layer = "handler"
	LayerInfrastructure Layer = "infrastructure"
)

type requestIDKey struct{}

// WithRequestID stores the request ID for errors created further down.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// PlatformError is an error annotated with its category, layer and the
// request it belongs to. ID is returned to clients so a report can be
// matched with the server log line.
type PlatformError struct {
	ID        string
	Type      ErrorType
	Layer     Layer
	Message   string
	RequestID string
	Err       error
	Timestamp time.Time
}

func (e *PlatformError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Layer))
	b.WriteByte('/')
	b.WriteString(string(e.Type))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status code the error maps to.
func (e *PlatformError) HTTPStatus() int {
	return lookup(e.Type).status
}

// NewError creates a PlatformError bound to the request in ctx.
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error) *PlatformError {
	return &PlatformError{
		ID:        uuid.NewString(),
		Type:      errorType,
		Layer:     layer,
		Message:   message,
		RequestID: RequestIDFromContext(ctx),
		Err:       err,
		Timestamp: time.Now().UTC(),
	}
}

// AsError wraps err with layer context. The type of a wrapped PlatformError
// is kept; anything else becomes internal.
func AsError(ctx context.Context, layer Layer, err error, message string) *PlatformError {
	if err == nil {
		return nil
	}
	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return NewError(ctx, layer, platformErr.Type, message+": "+platformErr.Message, platformErr)
	}
	return NewError(ctx, layer, ErrorTypeInternal, message, err)
}

// ErrorTypeToHTTPStatus maps error types to HTTP status codes.
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	return lookup(errorType).status
}

// IsErrorType reports whether err wraps a PlatformError of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	var platformErr *PlatformError
	return errors.As(err, &platformErr) && platformErr.Type == errorType
}

// LogError logs err at warn level for client-side categories and error
// level otherwise.
func LogError(logger zerolog.Logger, err *PlatformError) {
	if err == nil {
		return
	}
	event := logger.Error()
	if lookup(err.Type).quiet {
		event = logger.Warn()
	}
	event = event.
		Str("error_id", err.ID).
		Str("error_type", string(err.Type)).
		Str("layer", string(err.Layer))
	if err.RequestID != "" {
		event = event.Str("request_id", err.RequestID)
	}
	if err.Err != nil {
		event = event.Err(err.Err)
	}
	event.Msg(err.Message)
}
