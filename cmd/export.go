package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tickerloom-cli/internal/export"
	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/source"
	"github.com/spf13/cobra"
)

var (
	expFormat string
	expOutput string
	expSheet  string
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the extracted close series as csv, json or parquet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c := settings()
		format := expFormat
		if format == "" {
			format = c.ExportFormat
		}
		w := export.NewWriter(format)
		if w == nil {
			return fmt.Errorf("unsupported --format: %s (use: %s)", format, strings.Join(export.Formats, ", "))
		}
		out := expOutput
		if out == "" {
			base := filepath.Base(path)
			out = strings.TrimSuffix(base, filepath.Ext(base)) + ".series." + w.Extension()
		}

		res, err := loadAndParse(path, source.Options{MaxBytes: c.MaxBytes(), Sheet: expSheet}, ingest.Options{SampleRows: c.SampleRows})
		if err != nil {
			return err
		}
		if err := w.Save(export.Points(res.Series), out); err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d points to %s\n", res.Series.Len(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expFormat, "format", "f", "", "output format: csv|json|parquet (default: export_format from config)")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path (default: <name>.series.<ext>)")
	exportCmd.Flags().StringVar(&expSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
}
