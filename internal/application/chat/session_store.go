package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/janhq/relay-api/internal/domain/conversation"
)

// FileSessionStore keeps the session id in a small JSON file.
type FileSessionStore struct {
	path string
}

type sessionFile struct {
	SessionID string `json:"sessionId"`
}

// NewFileSessionStore creates a store backed by path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// DefaultSessionPath returns relay-chat/session.json under the user config dir.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "relay-chat", "session.json"), nil
}

// Path returns the file location.
func (s *FileSessionStore) Path() string {
	return s.path
}

// Load implements conversation.SessionStore.
func (s *FileSessionStore) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", conversation.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("read session file: %w", err)
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil || strings.TrimSpace(file.SessionID) == "" {
		return "", conversation.ErrNoSession
	}
	return file.SessionID, nil
}

// Save implements conversation.SessionStore.
func (s *FileSessionStore) Save(ctx context.Context, id string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(sessionFile{SessionID: id})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

var _ conversation.SessionStore = (*FileSessionStore)(nil)
