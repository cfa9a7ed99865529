package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/stepcap/stepcap/internal/session"
)

var showCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Print the steps of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := loadSession(args[0])
		if err != nil {
			return err
		}
		printSession(cmd, sess)
		return nil
	},
}

func printSession(cmd *cobra.Command, sess *session.Session) {
	cmd.Printf("%s\n", sess.Title())
	cmd.Printf("Started: %s", sess.StartTime.Format(time.RFC1123))
	if sess.StopTime != nil {
		cmd.Printf("  Stopped: %s", sess.StopTime.Format(time.RFC1123))
	}
	cmd.Printf("\nSteps: %d\n\n", len(sess.Steps))

	for _, st := range sess.Steps {
		cmd.Printf("  %3d. %s\n", st.Index, st.Description)
		if st.Screenshot != "" {
			cmd.Printf("       screenshot: %s", st.Screenshot)
			if len(st.Objects) > 0 {
				cmd.Printf("  (%d annotations)", len(st.Objects))
			}
			if st.Crop != nil {
				cmd.Printf("  (cropped)")
			}
			cmd.Println()
		}
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
