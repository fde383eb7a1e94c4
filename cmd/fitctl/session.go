package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HammerMeetNail/fittrack/internal/client"
)

// sessionFile persists a client.Session between invocations.
type sessionFile struct {
	path string
}

func defaultSessionPath(getenv func(string) string) string {
	if p := getenv("FITCTL_SESSION"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".fitctl-session.json"
	}
	return filepath.Join(dir, "fitctl", "session.json")
}

// load returns an empty session when nothing was saved yet.
func (f sessionFile) load() (*client.Session, error) {
	s := &client.Session{}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", f.path, err)
	}
	return s, nil
}

// save writes an active session and removes the file for an inactive one.
func (f sessionFile) save(s *client.Session) error {
	if !s.Active() {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing session: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}
