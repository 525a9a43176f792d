package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	cfgpkg "github.com/KaramelBytes/tickerloom-cli/internal/config"
	"github.com/KaramelBytes/tickerloom-cli/internal/recorder"
	"github.com/KaramelBytes/tickerloom-cli/internal/slogx"
	"github.com/KaramelBytes/tickerloom-cli/internal/synth"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	debug    bool
	logLevel string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "tickerloom",
	Short: "TickerLoom CLI: turn price CSVs into dashboard-ready series and stats",
	Long:  "TickerLoom ingests daily OHLCV price tables (CSV or XLSX), extracts the close series with its summary stats and renders it as a dashboard payload, a profile report or an export file. It can also serve the dashboard API over HTTP.",
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Execute prints errors itself.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tickerloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if debug {
		level = "debug"
	}
	slog.SetDefault(slogx.NewDefault(level))
}

// settings returns the loaded configuration or the defaults.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}

// resolveSeed prefers an explicit flag, then config, then the clock.
func resolveSeed(cmd *cobra.Command, flagSeed uint64) uint64 {
	if cmd.Flags().Changed("seed") {
		return flagSeed
	}
	if s := settings().Seed; s != 0 {
		return s
	}
	seed := uint64(time.Now().UnixNano())
	slog.Debug("seed from clock", "seed", seed)
	return seed
}

func synthFor(cmd *cobra.Command, flagSeed uint64) *synth.Generator {
	return synth.New(resolveSeed(cmd, flagSeed))
}

// openRecorder opens the history database, or a no-op recorder when history is disabled.
func openRecorder() (recorder.Recorder, error) {
	path, err := settings().ResolvedHistoryDB()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(path)
}
