package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/KaramelBytes/tickerloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	histLimit int
	histJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently recorded ingestion runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(settings().HistoryDB) == "" {
			return fmt.Errorf("history is disabled (set history_db to enable)")
		}
		rec, err := openRecorder()
		if err != nil {
			return err
		}
		defer rec.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		entries, err := rec.Recent(ctx, histLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if histJSON {
			b, err := utils.PrettyJSON(entries)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "(no history)")
			return nil
		}
		for _, e := range entries {
			when := e.RecordedAt.Local().Format("2006-01-02 15:04:05")
			if e.Error != "" {
				fmt.Fprintf(out, "✗ %s  %s  %s\n", when, e.Source, e.Error)
				continue
			}
			pct := "n/a"
			if e.ChangePercent != nil {
				pct = fmt.Sprintf("%+.2f%%", *e.ChangePercent)
			}
			fmt.Fprintf(out, "✓ %s  %s  %d points  %s  %.2f (%s)\n",
				when, e.Source, e.Points, e.DateRange, e.CurrentPrice, pct)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&histLimit, "limit", "n", 20, "number of entries to show")
	historyCmd.Flags().BoolVar(&histJSON, "json", false, "print entries as JSON")
}
