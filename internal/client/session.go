package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

// SessionEnv overrides the session file location
const SessionEnv = "SITECRAFT_SESSION"

// ErrNoSession is returned by LoadSession when nobody is logged in
var ErrNoSession = errors.New("not logged in")

// Session is the CLI's persisted login
type Session struct {
	Server    string    `yaml:"server"`
	Token     string    `yaml:"token"`
	UserID    string    `yaml:"user_id"`
	Name      string    `yaml:"name"`
	Email     string    `yaml:"email"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// DefaultSessionPath returns $SITECRAFT_SESSION, or session.yaml under the
// user config directory.
func DefaultSessionPath() (string, error) {
	if p := os.Getenv(SessionEnv); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "sitecraft", "session.yaml"), nil
}

// LoadSession hydrates the session from path. A missing file or an expired
// session yields ErrNoSession.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	if s.Token == "" || s.Expired(time.Now()) {
		return nil, ErrNoSession
	}
	return &s, nil
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Save writes the session to path, readable only by the owner
func (s *Session) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// ClearSession removes the session file. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
