package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultSessionFile is where the CLI keeps its session between runs.
const DefaultSessionFile = "session.json"

// Session is what a successful signin leaves on disk.
type Session struct {
	BaseURL  string `json:"base_url"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// SaveSession writes s to path readable only by the current user.
func SaveSession(path string, s Session) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0o600)
}

// LoadSession reads the session at path. A missing file yields an empty
// session and no error.
func LoadSession(path string) (Session, error) {
	var s Session
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read session: %w", err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("failed to parse session: %w", err)
	}
	return s, nil
}

// ClearSession removes the session file if present.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
