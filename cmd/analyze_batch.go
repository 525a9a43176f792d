package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/tickerloom-cli/internal/analysis"
	"github.com/KaramelBytes/tickerloom-cli/internal/workspace"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	abWorkspace           string
	abDescription         string
	abSampleRows          int
	abOutliers            bool
	abOutlierThr          float64
	abSheetName           string
	abSampleRowsWorkspace int
	abWorkers             int
	abQuiet               bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Profile multiple CSV/XLSX price files in parallel with optional workspace attachment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}

		opt := analysis.DefaultOptions()
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = abSampleRows
		}
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = abOutliers
		}
		if abOutlierThr > 0 {
			opt.OutlierThreshold = abOutlierThr
		}

		var w *workspace.Workspace
		if abWorkspace != "" {
			ww, err := loadWorkspace(abWorkspace)
			if err != nil {
				return err
			}
			w = ww
			if abSampleRowsWorkspace >= 0 {
				opt.SampleRows = abSampleRowsWorkspace
			}
		}

		workers := abWorkers
		if workers <= 0 {
			workers = settings().BatchWorkers
		}
		reports, err := profileAll(cmd.Context(), files, opt, workers)
		if err != nil {
			return err
		}

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Printf("[%d/%d] Processed %s\n", i+1, total, filepath.Base(path))
			}
			md := reports[i].Markdown()
			if w == nil {
				if !abQuiet {
					fmt.Println(md)
				}
				continue
			}
			outFile, err := attachSummary(w, path, abSheetName, abDescription, md, abQuiet)
			if err != nil {
				return err
			}
			if !abQuiet {
				fmt.Printf("✓ Added analysis to workspace '%s' as %s\n", w.Name, filepath.Base(outFile))
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths into a sorted, de-duplicated list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// profileAll profiles files with at most workers in flight. Reports keep the
// order of files; the first failure cancels the rest.
func profileAll(ctx context.Context, files []string, opt analysis.Options, workers int) ([]*analysis.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reports := make([]*analysis.Report, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := profileFile(path, abSheetName, opt)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abWorkspace, "workspace", "w", "", "workspace name to attach summaries")
	analyzeBatchCmd.Flags().StringVar(&abDescription, "desc", "", "description when attaching to workspace")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows to include")
	analyzeBatchCmd.Flags().BoolVar(&abOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	analyzeBatchCmd.Flags().Float64Var(&abOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	analyzeBatchCmd.Flags().StringVar(&abSheetName, "sheet", "", "XLSX: sheet name to analyze (default: first sheet)")
	analyzeBatchCmd.Flags().IntVar(&abSampleRowsWorkspace, "sample-rows-workspace", -1, "when attaching (-w), override sample rows for dataset summaries (0 disables samples)")
	analyzeBatchCmd.Flags().IntVar(&abWorkers, "workers", 0, "parallel workers (default: batch_workers from config)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
