package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stepcap/stepcap/internal/annotate"
	"github.com/stepcap/stepcap/internal/session"
)

var (
	annotateRect   string
	annotateColor  string
	annotateWidth  int
	annotatePoints string
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Add or remove annotations on a step's screenshot",
}

var annotateHighlightCmd = &cobra.Command{
	Use:   "highlight <session> <n>",
	Short: "Outline a region with a tinted highlight box",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, sess, store, err := loadAnnotateStep(args)
		if err != nil {
			return err
		}
		rect, err := parseRect(annotateRect)
		if err != nil {
			return err
		}
		clr := annotateColor
		if clr == "" {
			clr = cfg.Draw.Color
		}
		if _, err := annotate.ParseHex(clr); err != nil {
			return err
		}
		st.PushUndo()
		st.Objects = append(st.Objects, session.Object{
			Kind:  session.KindHighlight,
			Color: clr,
			Rect:  &rect,
		})
		if err := store.Save(sess); err != nil {
			return err
		}
		cmd.Printf("Highlight added to step %d.\n", st.Index)
		return nil
	},
}

var annotateDrawCmd = &cobra.Command{
	Use:   "draw <session> <n>",
	Short: "Add a freehand stroke through a list of points",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, sess, store, err := loadAnnotateStep(args)
		if err != nil {
			return err
		}
		points, err := parsePoints(annotatePoints)
		if err != nil {
			return err
		}
		clr := annotateColor
		if clr == "" {
			clr = cfg.Draw.Color
		}
		if _, err := annotate.ParseHex(clr); err != nil {
			return err
		}
		width := annotateWidth
		if !cmd.Flags().Changed("width") {
			width = cfg.Draw.Width
		}
		if width < 1 {
			return fmt.Errorf("stroke width must be at least 1")
		}
		st.PushUndo()
		st.Objects = append(st.Objects, session.Object{
			Kind:   session.KindDraw,
			Color:  clr,
			Width:  width,
			Points: points,
		})
		if err := store.Save(sess); err != nil {
			return err
		}
		cmd.Printf("Stroke added to step %d.\n", st.Index)
		return nil
	},
}

var annotateRedactCmd = &cobra.Command{
	Use:   "redact <session> <n>",
	Short: "Permanently black out a region of the screenshot",
	Long: `Redact overwrites the pixels inside --rect with a solid block and
rewrites the PNG on disk. The covered content cannot be recovered and the
step's undo history is discarded.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, sess, store, err := loadAnnotateStep(args)
		if err != nil {
			return err
		}
		if st.Screenshot == "" {
			return fmt.Errorf("step %d has no screenshot", st.Index)
		}
		rect, err := parseRect(annotateRect)
		if err != nil {
			return err
		}
		if err := annotate.Redact(store.ScreenshotPath(st), rect); err != nil {
			return err
		}
		st.ClearUndo()
		if err := store.Save(sess); err != nil {
			return err
		}
		cmd.Printf("Step %d redacted. This cannot be undone.\n", st.Index)
		return nil
	},
}

var annotateCropCmd = &cobra.Command{
	Use:   "crop <session> <n>",
	Short: "Set the step's crop region",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, sess, store, err := loadAnnotateStep(args)
		if err != nil {
			return err
		}
		if st.Screenshot == "" {
			return fmt.Errorf("step %d has no screenshot", st.Index)
		}
		rect, err := parseRect(annotateRect)
		if err != nil {
			return err
		}
		st.PushUndo()
		rect = rect.Canon()
		st.Crop = &rect
		if err := store.Save(sess); err != nil {
			return err
		}
		cmd.Printf("Step %d cropped.\n", st.Index)
		return nil
	},
}

var annotateResetCropCmd = &cobra.Command{
	Use:   "reset-crop <session> <n>",
	Short: "Remove the step's crop region",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, sess, store, err := loadAnnotateStep(args)
		if err != nil {
			return err
		}
		if st.Crop == nil {
			cmd.Printf("Step %d has no crop.\n", st.Index)
			return nil
		}
		st.PushUndo()
		st.Crop = nil
		if err := store.Save(sess); err != nil {
			return err
		}
		cmd.Printf("Crop removed from step %d.\n", st.Index)
		return nil
	},
}

var annotateUndoCmd = &cobra.Command{
	Use:   "undo <session> <n>",
	Short: "Revert the step's last annotation or crop change",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, sess, store, err := loadAnnotateStep(args)
		if err != nil {
			return err
		}
		if !st.PopUndo() {
			cmd.Printf("Nothing to undo on step %d.\n", st.Index)
			return nil
		}
		if err := store.Save(sess); err != nil {
			return err
		}
		cmd.Printf("Step %d reverted.\n", st.Index)
		return nil
	},
}

func loadAnnotateStep(args []string) (*session.Step, *session.Session, *session.Store, error) {
	sess, store, err := loadSession(args[0])
	if err != nil {
		return nil, nil, nil, err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, nil, nil, errInvalidStepNumber(args[1])
	}
	st, err := sess.Step(n)
	if err != nil {
		return nil, nil, nil, err
	}
	return st, sess, store, nil
}

func init() {
	for _, c := range []*cobra.Command{annotateHighlightCmd, annotateRedactCmd, annotateCropCmd} {
		c.Flags().StringVar(&annotateRect, "rect", "", "Region as X,Y,WxH in screenshot pixels")
		c.MarkFlagRequired("rect")
	}
	annotateHighlightCmd.Flags().StringVar(&annotateColor, "color", "", "Hex color, e.g. #e74c3c")
	annotateDrawCmd.Flags().StringVar(&annotateColor, "color", "", "Hex color, e.g. #e74c3c")
	annotateDrawCmd.Flags().IntVar(&annotateWidth, "width", 3, "Stroke width in pixels")
	annotateDrawCmd.Flags().StringVar(&annotatePoints, "points", "", "Stroke path as x1,y1;x2,y2;...")
	annotateDrawCmd.MarkFlagRequired("points")

	annotateCmd.AddCommand(annotateHighlightCmd)
	annotateCmd.AddCommand(annotateDrawCmd)
	annotateCmd.AddCommand(annotateRedactCmd)
	annotateCmd.AddCommand(annotateCropCmd)
	annotateCmd.AddCommand(annotateResetCropCmd)
	annotateCmd.AddCommand(annotateUndoCmd)
	rootCmd.AddCommand(annotateCmd)
}
