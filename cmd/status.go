package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepcap/stepcap/internal/recorder"
	"github.com/stepcap/stepcap/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current recording session status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewActiveStore()
		if err != nil {
			return err
		}

		a, err := store.Load()
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				cmd.Println("no active session")
				return nil
			}
			return err
		}

		// A pointer without a held lock is left over from a crashed
		// recorder; clear it instead of reporting a dead session as live.
		dataDir, err := session.DataDir()
		if err != nil {
			return err
		}
		if !recorder.Live(dataDir) {
			if err := store.Delete(); err != nil {
				return err
			}
			cmd.Println("no active session")
			return nil
		}

		cmd.Printf("Project: %s\n", a.Project)
		cmd.Printf("Directory: %s\n", a.Dir)
		cmd.Printf("Started: %s\n", a.StartTime.Format(time.RFC3339))
		cmd.Printf("Duration: %s\n", time.Since(a.StartTime).Round(time.Second).String())

		if sess, err := session.NewStore(a.Dir).Load(); err == nil {
			cmd.Printf("Steps: %d\n", len(sess.Steps))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
