package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrNoSession is returned by a SessionStore that holds no identifier yet.
var ErrNoSession = errors.New("session id not found")

const sessionPrefix = "session-"

// SessionStore persists the client's session identifier.
type SessionStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, id string) error
}

// NewSessionID generates a fresh opaque session identifier.
func NewSessionID() string {
	return sessionPrefix + uuid.NewString()
}

// EnsureSession returns the stored identifier, creating and saving a new one
// only when the store has none.
func EnsureSession(ctx context.Context, store SessionStore) (string, error) {
	id, err := store.Load(ctx)
	if err == nil && strings.TrimSpace(id) != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, ErrNoSession) {
		return "", err
	}

	id = NewSessionID()
	if err := store.Save(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

type sessionKey struct{}

// WithSession returns a context carrying the session identifier.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFromContext extracts the session identifier, if any.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}
