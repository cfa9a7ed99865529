package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stepcap/stepcap/internal/config"
	"github.com/stepcap/stepcap/internal/profile"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the interactive setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(false)
	},
}

// runSetup walks the user through the profile wizard and writes a sample
// config file if none exists yet.
func runSetup(firstRun bool) error {
	var existing *profile.Profile
	if !firstRun && profile.Exists() {
		p, err := profile.Load()
		if err != nil {
			return err
		}
		existing = p
	}

	p, err := profile.RunSetup(existing)
	if err != nil {
		return err
	}
	if err := profile.Save(p); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	activeProfile = p

	if path, err := config.WriteSample(); err == nil && path != "" {
		fmt.Printf("  Sample config written to %s\n", path)
	}

	fmt.Println("  Setup complete. Run 'stepcap record' to start a session.")
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
