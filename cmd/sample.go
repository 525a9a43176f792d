package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample [path]",
	Short: "Write the sample price file (default: sample-stock-data.csv, '-' for stdout)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "sample-stock-data.csv"
		if len(args) == 1 {
			path = args[0]
		}
		if path == "-" {
			fmt.Fprintln(cmd.OutOrStdout(), ingest.SampleCSV)
			return nil
		}
		if err := os.WriteFile(path, []byte(ingest.SampleCSV+"\n"), 0o644); err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote sample to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}
