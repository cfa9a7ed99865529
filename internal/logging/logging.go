// Package logging builds the structured logger used while recording.
// Events (step appends, capture failures, inbox imports) go to session.log
// inside the session directory so a recording carries its own trail.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// SessionLogFile is the log file name within a session directory.
const SessionLogFile = "session.log"

// NewSessionLogger returns a logger writing to session.log in dir and a
// close function. The file is appended to across resumed recordings.
func NewSessionLogger(dir string) (*slog.Logger, func() error, error) {
	path := filepath.Join(dir, SessionLogFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening session log: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, f.Close, nil
}

// Discard returns a logger that drops everything. Used by tests and by
// commands that mutate sessions outside a recording.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
