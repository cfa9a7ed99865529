package recorder_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/stepcap/stepcap/internal/listener"
	"github.com/stepcap/stepcap/internal/logging"
	"github.com/stepcap/stepcap/internal/recorder"
	"github.com/stepcap/stepcap/internal/session"
)

// stubCapturer returns a fixed frame, or an error when failing is set.
type stubCapturer struct {
	failing bool
	calls   atomic.Int32
}

func (s *stubCapturer) Capture(display int) (image.Image, error) {
	s.calls.Add(1)
	if s.failing {
		return nil, errors.New("no display")
	}
	return imaging.New(64, 48, color.NRGBA{10, 20, 30, 255}), nil
}

func newTestRecorder(t *testing.T, sc *stubCapturer) (*recorder.Recorder, *session.Store) {
	t.Helper()
	dir := t.TempDir()
	store := session.NewStore(dir)
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	sess := &session.Session{
		ID:        "rec-test",
		StartTime: time.Now(),
		Steps:     []session.Step{},
		Dir:       dir,
	}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return &recorder.Recorder{
		Store:    store,
		Sess:     sess,
		Capturer: sc,
		Log:      logging.Discard(),
	}, store
}

// runRecorder drives Run in a goroutine and returns a stop function that
// cancels the context and waits for the loop to exit.
func runRecorder(t *testing.T, rec *recorder.Recorder, events chan listener.Event, inbox chan string) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- rec.Run(ctx, events, inbox)
	}()
	return func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("recorder did not stop")
		}
	}
}

// drain waits until the session on disk has n steps.
func waitForSteps(t *testing.T, store *session.Store, n int) *session.Session {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		sess, err := store.Load()
		if err == nil && len(sess.Steps) >= n {
			return sess
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session never reached %d steps", n)
	return nil
}

func TestRecorderCapturesStepPerEvent(t *testing.T) {
	sc := &stubCapturer{}
	rec, store := newTestRecorder(t, sc)

	events := make(chan listener.Event)
	stop := runRecorder(t, rec, events, nil)

	events <- listener.Event{
		Description: "released left mouse button at (10, 20)",
		Time:        time.Now(),
	}
	events <- listener.Event{
		Description: "used keyboard shortcut CTRL + S",
		Time:        time.Now(),
	}
	sess := waitForSteps(t, store, 2)
	stop()

	if n := sc.calls.Load(); n != 2 {
		t.Errorf("Capture called %d times, want 2", n)
	}
	st := sess.Steps[0]
	if !strings.HasPrefix(st.Description, "In '") {
		t.Errorf("Description = %q, want window prefix", st.Description)
	}
	if !strings.Contains(st.Description, "released left mouse button at (10, 20)") {
		t.Errorf("Description = %q", st.Description)
	}
	if st.Screenshot != "step_1.png" {
		t.Errorf("Screenshot = %q, want step_1.png", st.Screenshot)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "step_1.png")); err != nil {
		t.Errorf("screenshot file missing: %v", err)
	}

	// Stop stamped the session.
	final, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if final.StopTime == nil {
		t.Error("StopTime not stamped on stop")
	}
}

func TestRecorderDropsStepOnCaptureFailure(t *testing.T) {
	sc := &stubCapturer{failing: true}
	rec, store := newTestRecorder(t, sc)

	events := make(chan listener.Event)
	stop := runRecorder(t, rec, events, nil)

	events <- listener.Event{Description: "released left mouse button at (1, 1)", Time: time.Now()}
	// Give the loop a moment to process before stopping.
	for sc.calls.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	stop()

	sess, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sess.Steps) != 0 {
		t.Errorf("len(Steps) = %d after failed capture, want 0", len(sess.Steps))
	}
}

func TestRecorderImportsInboxDrop(t *testing.T) {
	rec, store := newTestRecorder(t, &stubCapturer{})

	drop := filepath.Join(t.TempDir(), "diagram.png")
	img := imaging.New(30, 30, color.NRGBA{200, 100, 50, 255})
	if err := imaging.Save(img, drop); err != nil {
		t.Fatalf("saving drop file: %v", err)
	}

	inbox := make(chan string)
	stop := runRecorder(t, rec, nil, inbox)

	inbox <- drop
	sess := waitForSteps(t, store, 1)
	stop()

	st := sess.Steps[0]
	if st.Description != "diagram.png" {
		t.Errorf("Description = %q, want source file name", st.Description)
	}
	if !strings.HasPrefix(st.Screenshot, "step_import_") {
		t.Errorf("Screenshot = %q, want step_import_ prefix", st.Screenshot)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), st.Screenshot)); err != nil {
		t.Errorf("imported screenshot missing: %v", err)
	}
	if _, err := os.Stat(drop); !os.IsNotExist(err) {
		t.Error("drop file not removed after import")
	}
}

func TestRecorderSkipsExistingScreenshotNames(t *testing.T) {
	rec, store := newTestRecorder(t, &stubCapturer{})

	// A resumed session with a deleted step can leave step_1.png on disk
	// while the session has zero steps.
	if err := os.WriteFile(filepath.Join(store.Dir(), "step_1.png"), []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	events := make(chan listener.Event)
	stop := runRecorder(t, rec, events, nil)
	events <- listener.Event{Description: "pressed A key", Time: time.Now()}
	sess := waitForSteps(t, store, 1)
	stop()

	if sess.Steps[0].Screenshot != "step_2.png" {
		t.Errorf("Screenshot = %q, want step_2.png", sess.Steps[0].Screenshot)
	}
}

func TestAcquireLockExcludesSecondRecorder(t *testing.T) {
	dir := t.TempDir()

	release, err := recorder.AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer release()

	if _, err := recorder.AcquireLock(dir); !errors.Is(err, recorder.ErrLocked) {
		t.Errorf("second AcquireLock err = %v, want ErrLocked", err)
	}

	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	release2, err := recorder.AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
	release2()
}

func TestLiveTracksLock(t *testing.T) {
	dir := t.TempDir()

	if recorder.Live(dir) {
		t.Error("Live = true with no lock held")
	}

	release, err := recorder.AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if !recorder.Live(dir) {
		t.Error("Live = false while lock held")
	}

	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if recorder.Live(dir) {
		t.Error("Live = true after release")
	}
}

func TestWatchInboxEmitsImageDrops(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	drops, err := recorder.WatchInbox(ctx, dir)
	if err != nil {
		t.Fatalf("WatchInbox: %v", err)
	}

	// A non-image file is ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	imgPath := filepath.Join(dir, "shot.PNG")
	if err := os.WriteFile(imgPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case got := <-drops:
		if got != imgPath {
			t.Errorf("drop = %q, want %q", got, imgPath)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no drop event received")
	}

	cancel()
	select {
	case _, ok := <-drops:
		if ok {
			t.Error("unexpected extra drop after cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
