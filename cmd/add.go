package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/source"
	"github.com/spf13/cobra"
)

var (
	addWorkspaceName string
	addDatasetDesc   string
	addSheet         string
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Ingest a price file and add it to a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWorkspace(addWorkspaceName)
		if err != nil {
			return err
		}
		c := settings()
		d, err := w.AddDataset(args[0], addDatasetDesc,
			source.Options{MaxBytes: c.MaxBytes(), Sheet: addSheet},
			ingest.Options{SampleRows: c.SampleRows})
		if err != nil {
			return err
		}
		if err := w.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Dataset added: %s (%d points, %s)\n", d.Name, d.Points, d.DateRange)
		if d.Dropped > 0 || d.Coerced > 0 {
			fmt.Printf("⚠ %d row(s) dropped, %d close value(s) coerced to 0\n", d.Dropped, d.Coerced)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addWorkspaceName, "workspace", "w", "", "workspace name (default: enclosing workspace)")
	addCmd.Flags().StringVar(&addDatasetDesc, "desc", "", "dataset description")
	addCmd.Flags().StringVar(&addSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
}
