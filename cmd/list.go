package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		defer cat.Close()

		entries, err := cat.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			cmd.Println("no recorded sessions")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			project := e.Project
			if project == "" {
				project = "(untitled)"
			}
			exported := "-"
			if e.ExportedAt != nil {
				exported = fmt.Sprintf("%s (%s)", e.ExportedAt.Local().Format("2006-01-02 15:04"), e.ExportFormat)
			}
			rows = append(rows, []string{
				project,
				e.Dir,
				fmt.Sprintf("%d", e.Steps),
				e.CreatedAt.Local().Format("2006-01-02 15:04"),
				exported,
			})
		}

		cmd.Println(renderTable(
			[]string{"Project", "Directory", "Steps", "Created", "Last Export"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
		))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
