package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/tickerloom-cli/internal/dashboard"
	"github.com/KaramelBytes/tickerloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	demoDays int
	demoSeed uint64
)

var demoCmd = &cobra.Command{
	Use:   "demo <symbol>",
	Short: "Print a generated demo payload for a ticker symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := strings.ToUpper(strings.TrimSpace(args[0]))
		if demoDays < 2 {
			return fmt.Errorf("--days must be at least 2")
		}
		p, err := dashboard.Demo(symbol, demoDays, time.Now(), synthFor(cmd, demoSeed))
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(p)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().IntVar(&demoDays, "days", 30, "number of daily points")
	demoCmd.Flags().Uint64Var(&demoSeed, "seed", 0, "seed for the generated walk (default: config seed, else time based)")
}
