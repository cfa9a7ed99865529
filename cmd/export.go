package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepcap/stepcap/internal/catalog"
	"github.com/stepcap/stepcap/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <session>",
	Short: "Render a session to a shareable report",
	Long: `Export renders the session to a single self-contained file. HTML
reports embed every screenshot and need no companion files; PDF reports use
landscape A4 with one step per page; JSON dumps the raw session data.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, store, err := loadSession(args[0])
		if err != nil {
			return err
		}

		format := exportFormat
		if format == "" {
			format = cfg.DefaultFormat
		}
		renderer, err := export.ForFormat(format, authorName())
		if err != nil {
			return err
		}

		data, err := renderer.Render(sess)
		if err != nil {
			return err
		}

		out := exportOutput
		if out == "" {
			dir := cfg.OutputDir
			if dir == "" {
				dir = store.Dir()
			}
			out = filepath.Join(dir, export.Filename(sess, renderer.Ext()))
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}

		if cat, err := openCatalog(); err == nil {
			ctx := context.Background()
			_ = cat.Upsert(ctx, catalog.Entry{
				ID:        sess.ID,
				Project:   sess.Project,
				Dir:       store.Dir(),
				CreatedAt: sess.StartTime,
				Steps:     len(sess.Steps),
			})
			_ = cat.RecordExport(ctx, sess.ID, format, time.Now())
			cat.Close()
		}

		cmd.Printf("Report written: %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Report format: html, pdf, or json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	rootCmd.AddCommand(exportCmd)
}
