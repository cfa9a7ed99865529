package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotRecorded is returned by Store.Load when the directory holds no
// steps.json.
var ErrNotRecorded = errors.New("not a recording: no steps.json found")

// StepsFile is the metadata file name within a session directory.
const StepsFile = "steps.json"

// InboxDir is the drop directory within a session directory. Image files
// placed there while recording are imported as custom steps.
const InboxDir = "inbox"

// Store persists a Session into its directory.
type Store struct {
	dir string
}

// NewStore returns a Store for the given session directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the session directory.
func (s *Store) Dir() string { return s.dir }

// Init creates the session directory and its inbox.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Join(s.dir, InboxDir), 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	return nil
}

// Save marshals the session to steps.json, writing atomically via a temp
// file + os.Rename so a crash mid-write never corrupts the recording.
func (s *Store) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "steps-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	if err = os.Rename(tmpName, filepath.Join(s.dir, StepsFile)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Load reads and unmarshals steps.json. Returns ErrNotRecorded if the file
// does not exist.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, StepsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotRecorded
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", StepsFile, err)
	}
	sess.Dir = s.dir
	for i := range sess.Steps {
		if sess.Steps[i].Objects == nil {
			sess.Steps[i].Objects = []Object{}
		}
	}
	return &sess, nil
}

// ScreenshotPath returns the absolute path of a step's screenshot, or ""
// for text-only steps.
func (s *Store) ScreenshotPath(st *Step) string {
	if st.Screenshot == "" {
		return ""
	}
	return filepath.Join(s.dir, st.Screenshot)
}

// RemoveScreenshot deletes a screenshot file, tolerating absence.
func (s *Store) RemoveScreenshot(name string) error {
	if name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// NewDir builds a fresh session directory path under root, named after the
// sanitized project name plus a timestamp, matching the recordings layout
// recordings/<project>_<timestamp>/.
func NewDir(root, project string, now time.Time) string {
	ts := now.Format("2006-01-02_15-04-05")
	if name := SafeName(project); name != "" {
		return filepath.Join(root, name+"_"+ts)
	}
	return filepath.Join(root, ts)
}
