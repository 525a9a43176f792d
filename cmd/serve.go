package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/tickerloom-cli/internal/httpapi"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveSeed uint64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API (upload, demo, sample, metrics)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		addr := serveAddr
		if addr == "" {
			addr = c.ListenAddr
		}
		rec, err := openRecorder()
		if err != nil {
			return err
		}
		defer rec.Close()

		seed := c.Seed
		if cmd.Flags().Changed("seed") {
			seed = serveSeed
		}
		srv := httpapi.New(httpapi.Config{
			MaxBytes:   c.MaxBytes(),
			SampleRows: c.SampleRows,
			Seed:       seed,
		}, rec, slog.Default())

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: listen_addr from config)")
	serveCmd.Flags().Uint64Var(&serveSeed, "seed", 0, "fixed overlay seed for every request (default: config seed, else time based)")
}
