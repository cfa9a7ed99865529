// Package recorder runs the recording loop: it consumes qualifying input
// events, captures a screenshot for each, and appends the resulting step to
// the session, persisting after every append. A single goroutine owns the
// session; the state machine is idle → recording → stopped, bounded by the
// process lifetime and the recording lock.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/stepcap/stepcap/internal/capture"
	"github.com/stepcap/stepcap/internal/listener"
	"github.com/stepcap/stepcap/internal/session"
)

// Recorder appends steps to one session.
type Recorder struct {
	Store    *session.Store
	Sess     *session.Session
	Capturer capture.Capturer
	Display  int
	Log      *slog.Logger
}

// Run consumes events and inbox drops until ctx is cancelled, then stamps
// the stop time and saves. Capture or write failures are logged and the
// step is dropped; the loop never dies on a bad frame.
func (r *Recorder) Run(ctx context.Context, events <-chan listener.Event, inbox <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			now := time.Now()
			r.Sess.StopTime = &now
			if err := r.Store.Save(r.Sess); err != nil {
				return err
			}
			r.Log.Info("recording stopped", "steps", len(r.Sess.Steps))
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			r.captureStep(ev)

		case path, ok := <-inbox:
			if !ok {
				inbox = nil
				continue
			}
			r.importStep(path)
		}
	}
}

// captureStep grabs the screen and appends a step for one input event.
func (r *Recorder) captureStep(ev listener.Event) {
	img, err := r.Capturer.Capture(r.Display)
	if err != nil {
		r.Log.Warn("screenshot failed, step dropped", "err", err)
		return
	}

	filename := r.nextScreenshotName()
	if err := capture.SavePNG(img, filepath.Join(r.Store.Dir(), filename)); err != nil {
		r.Log.Warn("writing screenshot failed, step dropped", "err", err)
		return
	}

	window := capture.ActiveWindowTitle()
	r.Sess.AppendStep(session.Step{
		Timestamp:   ev.Time,
		Description: fmt.Sprintf("In '%s', %s", window, ev.Description),
		Screenshot:  filename,
	})
	if err := r.Store.Save(r.Sess); err != nil {
		r.Log.Error("persisting session failed", "err", err)
		return
	}
	r.Log.Info("step captured", "step", len(r.Sess.Steps), "screenshot", filename)
}

// importStep converts an inbox drop into a custom step. The file is
// re-encoded as PNG inside the session directory so the inbox stays
// disposable.
func (r *Recorder) importStep(path string) {
	img, err := imaging.Open(path)
	if err != nil {
		r.Log.Warn("inbox file ignored", "path", path, "err", err)
		return
	}

	filename := fmt.Sprintf("step_import_%d.png", time.Now().UnixNano())
	if err := capture.SavePNG(img, filepath.Join(r.Store.Dir(), filename)); err != nil {
		r.Log.Warn("importing inbox file failed", "path", path, "err", err)
		return
	}
	os.Remove(path)

	r.Sess.AppendStep(session.Step{
		Timestamp:   time.Now(),
		Description: filepath.Base(path),
		Screenshot:  filename,
	})
	if err := r.Store.Save(r.Sess); err != nil {
		r.Log.Error("persisting session failed", "err", err)
		return
	}
	r.Log.Info("inbox image imported", "step", len(r.Sess.Steps), "from", filepath.Base(path))
}

// nextScreenshotName returns step_<n>.png for the next step, skipping names
// already on disk (resumed sessions with deleted steps can leave gaps).
func (r *Recorder) nextScreenshotName() string {
	n := len(r.Sess.Steps) + 1
	for {
		name := fmt.Sprintf("step_%d.png", n)
		if _, err := os.Stat(filepath.Join(r.Store.Dir(), name)); os.IsNotExist(err) {
			return name
		}
		n++
	}
}
