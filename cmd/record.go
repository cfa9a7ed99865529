package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stepcap/stepcap/internal/capture"
	"github.com/stepcap/stepcap/internal/catalog"
	"github.com/stepcap/stepcap/internal/listener"
	"github.com/stepcap/stepcap/internal/logging"
	"github.com/stepcap/stepcap/internal/recorder"
	"github.com/stepcap/stepcap/internal/session"
)

var (
	recordProject  string
	recordResume   string
	recordOnClick  bool
	recordOnHotkey bool
	recordDisplay  int
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Start a recording session (Ctrl+C stops it)",
	Long: `Record starts a new recording session in the foreground. Every mouse
release and keyboard shortcut captures a screenshot step until the process is
interrupted. Drop image files into the session's inbox/ directory to import
them as custom steps while recording.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		activeStore, err := session.NewActiveStore()
		if err != nil {
			return err
		}
		dataDir, err := session.DataDir()
		if err != nil {
			return err
		}

		// The flock is the liveness check: the kernel releases it when the
		// holder dies, even on SIGKILL. The pointer file alone can go stale.
		release, err := recorder.AcquireLock(dataDir)
		if err != nil {
			if errors.Is(err, recorder.ErrLocked) {
				if a, lerr := activeStore.Load(); lerr == nil {
					return fmt.Errorf("session already in progress (started at %s)", a.StartTime.Format(time.RFC3339))
				}
			}
			return err
		}
		defer release()

		// Holding the lock means no recorder is running; a leftover pointer
		// was left by a crashed process.
		if a, err := activeStore.Load(); err == nil {
			fmt.Printf("Clearing stale session pointer (pid %d).\n", a.PID)
			if err := activeStore.Delete(); err != nil {
				return err
			}
		} else if !errors.Is(err, session.ErrNoSession) {
			return err
		}

		// Flags default from config; explicit flags win.
		onClick := cfg.Capture.OnClick
		onHotkey := cfg.Capture.OnHotkey
		display := cfg.Capture.Display
		if cmd.Flags().Changed("on-click") {
			onClick = recordOnClick
		}
		if cmd.Flags().Changed("on-hotkey") {
			onHotkey = recordOnHotkey
		}
		if cmd.Flags().Changed("display") {
			display = recordDisplay
		}

		now := time.Now()
		var store *session.Store
		var sess *session.Session

		if recordResume != "" {
			sess, store, err = loadSession(recordResume)
			if err != nil {
				return fmt.Errorf("resuming: %w", err)
			}
			// Sessions imported from elsewhere may lack an inbox.
			if err := store.Init(); err != nil {
				return err
			}
			// Continuing a stopped session: recording runs until the next
			// interrupt stamps a fresh stop time.
			sess.StopTime = nil
		} else {
			dir := session.NewDir(cfg.RecordingsDir, recordProject, now)
			store = session.NewStore(dir)
			if err := store.Init(); err != nil {
				return err
			}
			sess = &session.Session{
				ID:        uuid.New().String(),
				Project:   recordProject,
				StartTime: now,
				Steps:     []session.Step{},
				Dir:       dir,
			}
			if err := store.Save(sess); err != nil {
				return err
			}
		}

		if err := activeStore.Save(&session.Active{
			ID:        sess.ID,
			Project:   sess.Project,
			Dir:       store.Dir(),
			StartTime: sess.StartTime,
			PID:       os.Getpid(),
		}); err != nil {
			return err
		}
		defer activeStore.Delete()

		logger, closeLog, err := logging.NewSessionLogger(store.Dir())
		if err != nil {
			return err
		}
		defer closeLog()
		logger.Info("recording started", "session", sess.ID, "on_click", onClick, "on_hotkey", onHotkey)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		lst := listener.New(onClick, onHotkey)
		go func() {
			if err := lst.Run(ctx); err != nil {
				logger.Error("input listener stopped", "err", err)
			}
		}()

		inbox, err := recorder.WatchInbox(ctx, filepath.Join(store.Dir(), session.InboxDir))
		if err != nil {
			return fmt.Errorf("watching inbox: %w", err)
		}

		fmt.Printf("● Recording into %s — press Ctrl+C to stop.\n", store.Dir())

		rec := &recorder.Recorder{
			Store:    store,
			Sess:     sess,
			Capturer: capture.New(),
			Display:  display,
			Log:      logger,
		}
		if err := rec.Run(ctx, lst.Events(), inbox); err != nil {
			return err
		}

		if cat, err := openCatalog(); err == nil {
			_ = cat.Upsert(context.Background(), catalog.Entry{
				ID:        sess.ID,
				Project:   sess.Project,
				Dir:       store.Dir(),
				CreatedAt: sess.StartTime,
				Steps:     len(sess.Steps),
			})
			cat.Close()
		}

		fmt.Printf("◼ Stopped — %d steps saved in %s\n", len(sess.Steps), store.Dir())
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVarP(&recordProject, "project", "p", "", "Project name for the session directory and report title")
	recordCmd.Flags().StringVar(&recordResume, "resume", "", "Continue recording into an existing session")
	recordCmd.Flags().BoolVar(&recordOnClick, "on-click", true, "Capture a step per mouse release and keyboard shortcut")
	recordCmd.Flags().BoolVar(&recordOnHotkey, "on-hotkey", false, "Capture a step per Scroll Lock press")
	recordCmd.Flags().IntVar(&recordDisplay, "display", 0, "Display index to capture")
	rootCmd.AddCommand(recordCmd)
}
