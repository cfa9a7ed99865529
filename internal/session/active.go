package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoSession is returned by ActiveStore.Load when no recording is in
// progress.
var ErrNoSession = errors.New("no active session")

// Active points at the recording currently in progress. It lets status and
// editing commands find the live session from any working directory.
type Active struct {
	ID        string    `json:"id"`
	Project   string    `json:"project_name"`
	Dir       string    `json:"dir"`
	StartTime time.Time `json:"start_time"`
	PID       int       `json:"pid"`
}

// ActiveStore persists the active-session pointer.
type ActiveStore interface {
	Save(a *Active) error
	Load() (*Active, error) // returns ErrNoSession if none exists
	Delete() error
}

// diskActiveStore writes the pointer into the XDG data directory.
type diskActiveStore struct {
	path string // full path to session.json
}

// NewActiveStore returns an ActiveStore backed by the XDG data directory.
// Path: $XDG_DATA_HOME/stepcap/session.json or ~/.local/share/stepcap/session.json
func NewActiveStore() (ActiveStore, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskActiveStore{path: filepath.Join(dir, "session.json")}, nil
}

// DataDir returns the stepcap-specific XDG data directory.
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "stepcap"), nil
}

// Save writes the pointer atomically via a temp file + os.Rename.
func (d *diskActiveStore) Save(a *Active) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "session-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}

	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("failed to persist session state: %w", err)
	}
	return nil
}

// Load reads the pointer. Returns ErrNoSession if the file does not exist.
func (d *diskActiveStore) Load() (*Active, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}

	var a Active
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse session state: %w", err)
	}
	return &a, nil
}

// Delete removes the pointer file.
func (d *diskActiveStore) Delete() error {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session state: %w", err)
	}
	return nil
}
