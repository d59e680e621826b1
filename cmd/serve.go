package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/removethebg/rtbg/internal/server"
	"github.com/removethebg/rtbg/internal/vendorer"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve vendoring over HTTP",
	Long: `Serve runs an HTTP service for shared build hosts:
  GET  /healthz        liveness
  GET  /vendor         manifest of the last run (404 before the first run)
  POST /vendor         start a vendoring run (409 while one is active)
  GET  /vendor/status  current and last run
  GET  /vendor/size    vendor directory size

With --schedule (or server.schedule in the config) the service also re-vendors
on a cron expression, skipping ticks while a run is active.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config)")
	serveCmd.Flags().String("schedule", "", "cron expression for periodic re-vendoring")
	serveCmd.Flags().String("python", "", "Python interpreter used for pip and introspection")
}

func runServe(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd)
	cfg := app.Config

	addr := cfg.Server.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	schedule := cfg.Server.Schedule
	if s, _ := cmd.Flags().GetString("schedule"); s != "" {
		schedule = s
	}
	python := cfg.Python
	if p, _ := cmd.Flags().GetString("python"); p != "" {
		python = p
	}

	v := newVendorer(app.Runner(), python, app.Logger)
	opts := vendorOptions(cfg)
	srv := server.New(opts.VendorDir, func(ctx context.Context) (*vendorer.Report, error) {
		return v.Run(ctx, opts)
	}, app.Logger)

	if schedule != "" {
		if err := srv.Schedule(schedule); err != nil {
			return err
		}
	}
	return srv.ListenAndServe(cmd.Context(), addr)
}
