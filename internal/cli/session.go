package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Session is what the CLI remembers about the server it talked to last,
// so it can tell when a restart wiped the run.
type Session struct {
	APIBaseURL string    `json:"api_base_url"`
	RunID      string    `json:"run_id"`
	SeenAt     time.Time `json:"seen_at"`
}

// BaseDir is overridable for tests.
var BaseDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cycles"), nil
}

func sessionPath() (string, error) {
	dir, err := BaseDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func SaveSession(s Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o600)
}

// LoadSession returns the zero Session when nothing was saved yet.
func LoadSession() (Session, error) {
	path, err := sessionPath()
	if err != nil {
		return Session{}, err
	}
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// ObserveRun records runID for baseURL and reports whether it differs
// from the run seen last time against the same server.
func ObserveRun(baseURL, runID string) (changed bool, err error) {
	prev, err := LoadSession()
	if err != nil {
		return false, err
	}
	changed = prev.APIBaseURL == baseURL && prev.RunID != "" && prev.RunID != runID
	err = SaveSession(Session{APIBaseURL: baseURL, RunID: runID, SeenAt: time.Now().UTC()})
	return changed, err
}
