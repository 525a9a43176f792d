package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/tickerloom-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	listWorkspaces bool
	listDatasets   bool
	listWsName     string
	listSummary    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces or datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listWorkspaces == listDatasets { // either both true or both false
			return fmt.Errorf("specify exactly one of --workspaces or --datasets")
		}
		if listWorkspaces {
			return listAllWorkspaces()
		}
		w, err := loadWorkspace(listWsName)
		if err != nil {
			return err
		}
		if len(w.Datasets) == 0 {
			fmt.Println("(no datasets)")
			return nil
		}
		if listSummary {
			s, err := w.Summary()
			if err != nil {
				return err
			}
			fmt.Print(s)
			return nil
		}
		for _, d := range w.Sorted() {
			fmt.Printf("- %s: %s [%s] (%s)\n", d.ID, d.Name, d.DateRange, d.Description)
		}
		return nil
	},
}

func listAllWorkspaces() error {
	root, err := defaultWorkspacesDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), workspace.FileName)); err == nil {
			fmt.Printf("- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Println("(no workspaces)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listWorkspaces, "workspaces", false, "list workspaces")
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list datasets in a workspace")
	listCmd.Flags().StringVarP(&listWsName, "workspace", "w", "", "workspace name for --datasets")
	listCmd.Flags().BoolVar(&listSummary, "summary", false, "with --datasets, print stats per dataset")
}
