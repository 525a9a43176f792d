package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tickerloom-cli/internal/analysis"
	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/source"
	"github.com/KaramelBytes/tickerloom-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	anaWorkspace   string
	anaOutputPath  string
	anaDescription string
	anaSampleRows  int
	anaSheetName   string
	anaOutliers    bool
	anaOutlierThr  float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a price file and produce a concise Markdown summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt := analysis.DefaultOptions()
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = anaSampleRows
		}
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = anaOutliers
		}
		if anaOutlierThr > 0 {
			opt.OutlierThreshold = anaOutlierThr
		}
		rep, err := profileFile(path, anaSheetName, opt)
		if err != nil {
			return err
		}
		md := rep.Markdown()

		// Decide where to write: --output path, or attach to workspace, or stdout
		written := false
		if anaOutputPath != "" {
			if err := os.WriteFile(anaOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			written = true
		}
		if anaWorkspace != "" {
			w, err := loadWorkspace(anaWorkspace)
			if err != nil {
				return err
			}
			outFile, err := attachSummary(w, path, anaSheetName, anaDescription, md, false)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Added analysis to workspace '%s' as %s\n", w.Name, filepath.Base(outFile))
			written = true
		}
		if !written {
			fmt.Println(md)
		}
		return nil
	},
}

// profileFile loads path, runs the ingest pipeline and profiles the result.
func profileFile(path, sheet string, opt analysis.Options) (*analysis.Report, error) {
	c := settings()
	text, err := source.LoadFile(path, source.Options{MaxBytes: c.MaxBytes(), Sheet: sheet})
	if err != nil {
		return nil, err
	}
	res, err := ingest.Parse(text, ingest.Options{SampleRows: c.SampleRows})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return analysis.Profile(filepath.Base(path), res, opt), nil
}

// attachSummary writes md under the workspace's summaries/ directory without
// overwriting earlier summaries, then records the source file as a dataset.
func attachSummary(w *workspace.Workspace, path, sheet, desc, md string, quiet bool) (string, error) {
	outDir := filepath.Join(w.RootDir(), "summaries")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(path)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	if sheet != "" {
		safe = safe + "__sheet-" + slugify(sheet)
	}
	outFile := filepath.Join(outDir, safe+".summary.md")
	if _, statErr := os.Stat(outFile); statErr == nil {
		idx := 2
		for {
			cand := filepath.Join(outDir, fmt.Sprintf("%s__%d.summary.md", safe, idx))
			if _, err := os.Stat(cand); os.IsNotExist(err) {
				if !quiet {
					fmt.Printf("⚠ Detected existing summary, writing to %s to avoid overwrite.\n", filepath.Base(cand))
				}
				outFile = cand
				break
			}
			idx++
		}
	}
	if err := os.WriteFile(outFile, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write workspace summary: %w", err)
	}
	if desc == "" {
		desc = "Auto-generated dataset summary"
	}
	c := settings()
	if _, err := w.AddDataset(path, desc,
		source.Options{MaxBytes: c.MaxBytes(), Sheet: sheet},
		ingest.Options{SampleRows: c.SampleRows}); err != nil {
		return "", err
	}
	if err := w.Save(); err != nil {
		return "", err
	}
	return outFile, nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "sheet"
	}
	return out
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaWorkspace, "workspace", "w", "", "workspace name to attach summary")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis (Markdown)")
	analyzeCmd.Flags().StringVar(&anaDescription, "desc", "", "description when attaching to workspace")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include")
	analyzeCmd.Flags().BoolVar(&anaOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	analyzeCmd.Flags().Float64Var(&anaOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet", "", "XLSX: sheet name to analyze (default: first sheet)")
}
