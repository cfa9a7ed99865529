package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stepcap/stepcap/internal/catalog"
	"github.com/stepcap/stepcap/internal/session"
)

// resolveSessionDir maps a <session> argument to a session directory.
// The argument may be a path to the directory itself, a directory name under
// the configured recordings root, or "." for the active recording.
func resolveSessionDir(arg string) (string, error) {
	if arg == "." {
		active, err := loadActive()
		if err != nil {
			return "", err
		}
		return active.Dir, nil
	}
	if hasSteps(arg) {
		return arg, nil
	}
	candidate := filepath.Join(cfg.RecordingsDir, arg)
	if hasSteps(candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("no recording found at %q or %q", arg, candidate)
}

func hasSteps(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, session.StepsFile))
	return err == nil
}

// loadSession loads the session named by arg along with its store.
func loadSession(arg string) (*session.Session, *session.Store, error) {
	dir, err := resolveSessionDir(arg)
	if err != nil {
		return nil, nil, err
	}
	store := session.NewStore(dir)
	sess, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	return sess, store, nil
}

func loadActive() (*session.Active, error) {
	store, err := session.NewActiveStore()
	if err != nil {
		return nil, err
	}
	active, err := store.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, fmt.Errorf("no active session")
		}
		return nil, err
	}
	return active, nil
}

func errInvalidStepNumber(s string) error {
	return fmt.Errorf("invalid step number %q", s)
}

// parseRect parses the --rect flag syntax "X,Y,WxH" into image-space
// corners.
func parseRect(s string) (session.Rect, error) {
	var x, y, w, h int
	if _, err := fmt.Sscanf(s, "%d,%d,%dx%d", &x, &y, &w, &h); err != nil {
		return session.Rect{}, fmt.Errorf("invalid rect %q (want X,Y,WxH)", s)
	}
	if w < 1 || h < 1 {
		return session.Rect{}, fmt.Errorf("invalid rect %q: width and height must be positive", s)
	}
	return session.Rect{X1: x, Y1: y, X2: x + w, Y2: y + h}, nil
}

// parsePoints parses the --points flag syntax "x1,y1;x2,y2;...".
func parsePoints(s string) ([][2]int, error) {
	var pts [][2]int
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ';' {
			seg := s[start:i]
			start = i + 1
			if seg == "" {
				continue
			}
			var x, y int
			if _, err := fmt.Sscanf(seg, "%d,%d", &x, &y); err != nil {
				return nil, fmt.Errorf("invalid point %q (want x,y)", seg)
			}
			pts = append(pts, [2]int{x, y})
		}
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("need at least two points")
	}
	return pts, nil
}

// openCatalog opens the session index in the stepcap data directory.
func openCatalog() (*catalog.Catalog, error) {
	dataDir, err := session.DataDir()
	if err != nil {
		return nil, err
	}
	return catalog.Open(catalog.DefaultPath(dataDir))
}

// syncCatalog refreshes the catalog row for sess. Best-effort: the catalog
// is an index, steps.json remains the source of truth.
func syncCatalog(sess *session.Session) {
	cat, err := openCatalog()
	if err != nil {
		return
	}
	defer cat.Close()
	_ = cat.Upsert(context.Background(), catalog.Entry{
		ID:        sess.ID,
		Project:   sess.Project,
		Dir:       sess.Dir,
		CreatedAt: sess.StartTime,
		Steps:     len(sess.Steps),
	})
}
