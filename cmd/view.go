package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stepcap/stepcap/internal/tui"
)

var viewPlain bool

var viewCmd = &cobra.Command{
	Use:   "view <session>",
	Short: "Browse and edit a session in the terminal",
	Long: `View opens an interactive browser over the session's steps. Steps can
be expanded, their descriptions edited and deleted in place. Use --plain for a
non-interactive dump.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, store, err := loadSession(args[0])
		if err != nil {
			return err
		}
		if viewPlain {
			printSession(cmd, sess)
			return nil
		}
		if err := tui.Run(sess, store); err != nil {
			return err
		}
		syncCatalog(sess)
		return nil
	},
}

func init() {
	viewCmd.Flags().BoolVar(&viewPlain, "plain", false, "Print steps instead of opening the interactive viewer")
	rootCmd.AddCommand(viewCmd)
}
