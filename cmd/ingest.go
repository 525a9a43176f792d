package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tickerloom-cli/internal/dashboard"
	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/recorder"
	"github.com/KaramelBytes/tickerloom-cli/internal/source"
	"github.com/KaramelBytes/tickerloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	ingSeed       uint64
	ingJSON       bool
	ingOutput     string
	ingRecord     bool
	ingSampleRows int
	ingSheet      string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Parse a price file and print its stats or the dashboard payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		name := filepath.Base(path)
		c := settings()
		iopt := ingest.Options{SampleRows: c.SampleRows}
		if cmd.Flags().Changed("sample-rows") {
			iopt.SampleRows = ingSampleRows
		}

		res, err := loadAndParse(path, source.Options{MaxBytes: c.MaxBytes(), Sheet: ingSheet}, iopt)
		if ingRecord {
			var entry recorder.Entry
			if err != nil {
				entry = recorder.FromError(name, err)
			} else {
				entry = recorder.FromResult(name, res)
			}
			if rerr := recordEntry(cmd.Context(), entry); rerr != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: history not recorded: %v\n", rerr)
			}
		}
		if err != nil {
			return err
		}
		slog.Debug("ingested", "file", name, "points", res.Series.Len(),
			"dropped", res.Series.Dropped, "coerced", res.Series.Coerced)

		if ingJSON || ingOutput != "" {
			payload := dashboard.Build(res, synthFor(cmd, ingSeed))
			b, err := utils.PrettyJSON(payload)
			if err != nil {
				return err
			}
			if ingOutput != "" {
				if err := utils.SafeWriteFile(ingOutput, b); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote payload to %s\n", ingOutput)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		printStats(cmd.OutOrStdout(), name, res)
		return nil
	},
}

// loadAndParse reads path through the loader registry and runs the pipeline.
func loadAndParse(path string, sopt source.Options, iopt ingest.Options) (*ingest.Result, error) {
	text, err := source.LoadFile(path, sopt)
	if err != nil {
		return nil, err
	}
	return ingest.Parse(text, iopt)
}

func recordEntry(ctx context.Context, e recorder.Entry) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rec, err := openRecorder()
	if err != nil {
		return err
	}
	defer rec.Close()
	return rec.RecordIngestion(ctx, e)
}

func printStats(w io.Writer, name string, res *ingest.Result) {
	st := res.Stats
	fmt.Fprintf(w, "✓ Parsed %s: %d records, %d points (%s)\n", name, res.Preview.TotalRecords, res.Series.Len(), st.DateRange)
	if len(res.Series.Symbols) > 0 {
		fmt.Fprintf(w, "  Symbols: %s\n", strings.Join(res.Series.Symbols, ", "))
	}
	fmt.Fprintf(w, "  Current: %.2f  Previous: %.2f  Change: %+.2f (%s)\n",
		st.CurrentPrice, st.PreviousPrice, st.Change, formatPercent(st.ChangePercent))
	if res.Series.Dropped > 0 {
		fmt.Fprintf(w, "⚠ %d row(s) with an unparseable date were dropped\n", res.Series.Dropped)
	}
	if res.Series.Coerced > 0 {
		fmt.Fprintf(w, "⚠ %d invalid close value(s) were set to 0\n", res.Series.Coerced)
	}
}

func formatPercent(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", f)
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().Uint64Var(&ingSeed, "seed", 0, "seed for synthetic overlays (default: config seed, else time based)")
	ingestCmd.Flags().BoolVar(&ingJSON, "json", false, "print the dashboard payload as JSON")
	ingestCmd.Flags().StringVarP(&ingOutput, "output", "o", "", "write the dashboard payload JSON to this path")
	ingestCmd.Flags().BoolVar(&ingRecord, "record", false, "record this run in the history database")
	ingestCmd.Flags().IntVar(&ingSampleRows, "sample-rows", ingest.DefaultSampleRows, "preview rows to include in the payload")
	ingestCmd.Flags().StringVar(&ingSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
}
