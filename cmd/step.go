package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/stepcap/stepcap/internal/capture"
	"github.com/stepcap/stepcap/internal/session"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Edit, delete, insert, or move steps",
}

var stepEditCmd = &cobra.Command{
	Use:   "edit <session> <n> <description>",
	Short: "Replace a step's description",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, store, n, err := loadStepArgs(args)
		if err != nil {
			return err
		}
		st, err := sess.Step(n)
		if err != nil {
			return err
		}
		st.Description = args[2]
		if err := store.Save(sess); err != nil {
			return err
		}
		syncCatalog(sess)
		cmd.Printf("Step %d updated.\n", n)
		return nil
	},
}

var stepDeleteCmd = &cobra.Command{
	Use:   "delete <session> <n>",
	Short: "Remove a step and its screenshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, store, n, err := loadStepArgs(args)
		if err != nil {
			return err
		}
		screenshot, err := sess.DeleteStep(n)
		if err != nil {
			return err
		}
		if err := store.Save(sess); err != nil {
			return err
		}
		if screenshot != "" {
			if err := store.RemoveScreenshot(screenshot); err != nil {
				cmd.PrintErrf("warning: could not remove %s: %v\n", screenshot, err)
			}
		}
		syncCatalog(sess)
		cmd.Printf("Step %d deleted, %d steps remain.\n", n, len(sess.Steps))
		return nil
	},
}

var stepInsertImage string

var stepInsertCmd = &cobra.Command{
	Use:   "insert <session> <pos> <description>",
	Short: "Insert a custom step at a position",
	Long: `Insert adds a step at 1-based position <pos>, shifting later steps
down. A position one past the last step appends. Without --image the step is
text-only; with --image the file is copied into the session as the step's
screenshot.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, store, pos, err := loadStepArgs(args)
		if err != nil {
			return err
		}
		st := session.Step{
			Timestamp:   time.Now(),
			Description: args[2],
		}
		if stepInsertImage != "" {
			name, err := importImage(store, stepInsertImage)
			if err != nil {
				return err
			}
			st.Screenshot = name
		}
		if err := sess.InsertStep(pos, st); err != nil {
			return err
		}
		if err := store.Save(sess); err != nil {
			return err
		}
		syncCatalog(sess)
		cmd.Printf("Inserted step %d of %d.\n", pos, len(sess.Steps))
		return nil
	},
}

var stepMoveCmd = &cobra.Command{
	Use:   "move <session> <n> <pos>",
	Short: "Move a step to another position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, store, src, err := loadStepArgs(args)
		if err != nil {
			return err
		}
		dst, err := strconv.Atoi(args[2])
		if err != nil {
			return errInvalidStepNumber(args[2])
		}
		if err := sess.MoveStep(src, dst); err != nil {
			return err
		}
		if err := store.Save(sess); err != nil {
			return err
		}
		syncCatalog(sess)
		cmd.Printf("Step %d moved to position %d.\n", src, dst)
		return nil
	},
}

// importImage re-encodes an image file into the session directory and
// returns the stored filename.
func importImage(store *session.Store, path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", path, err)
	}
	name := fmt.Sprintf("step_import_%d.png", time.Now().UnixNano())
	if err := capture.SavePNG(img, filepath.Join(store.Dir(), name)); err != nil {
		return "", err
	}
	return name, nil
}

// loadStepArgs resolves the common "<session> <n>" argument prefix.
func loadStepArgs(args []string) (*session.Session, *session.Store, int, error) {
	sess, store, err := loadSession(args[0])
	if err != nil {
		return nil, nil, 0, err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, nil, 0, errInvalidStepNumber(args[1])
	}
	return sess, store, n, nil
}

func init() {
	stepInsertCmd.Flags().StringVar(&stepInsertImage, "image", "", "Image file to attach as the step's screenshot")
	stepCmd.AddCommand(stepEditCmd)
	stepCmd.AddCommand(stepDeleteCmd)
	stepCmd.AddCommand(stepInsertCmd)
	stepCmd.AddCommand(stepMoveCmd)
	rootCmd.AddCommand(stepCmd)
}
