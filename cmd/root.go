package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/stepcap/stepcap/internal/config"
	"github.com/stepcap/stepcap/internal/profile"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded user profile.
var activeProfile *profile.Profile

var rootCmd = &cobra.Command{
	Use:   "stepcap",
	Short: "Record on-screen actions as screenshot steps and export shareable reports",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// First-run: profile missing → run setup wizard automatically.
		// Only do this when stdin is an interactive terminal.
		if !profile.Exists() {
			if term.IsTerminal(os.Stdin.Fd()) {
				fmt.Println()
				fmt.Println("  Welcome to stepcap! Looks like this is your first time.")
				if err := runSetup(true); err != nil {
					return err
				}
			}
			// Non-interactive (tests, pipes): continue with defaults, no profile required.
		}

		// Load profile if present. Non-interactive environments run without one.
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		// Merge order: defaults < profile < global file < project file.
		base := config.Defaults()
		if activeProfile != nil {
			if activeProfile.DefaultFormat != "" {
				base.DefaultFormat = activeProfile.DefaultFormat
			}
			if activeProfile.OutputDir != "" {
				base.OutputDir = activeProfile.OutputDir
			}
			base.Capture.OnClick = activeProfile.CaptureOnClick
			base.Capture.OnHotkey = activeProfile.CaptureOnHotkey
		}

		var err error
		cfg, err = config.LoadOver(base)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active user profile.
func GetProfile() *profile.Profile {
	return activeProfile
}

// authorName returns the profile name for report covers, or "".
func authorName() string {
	if activeProfile == nil {
		return ""
	}
	return activeProfile.Name
}
