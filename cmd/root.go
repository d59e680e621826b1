package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/removethebg/rtbg/internal/commander"
	"github.com/removethebg/rtbg/internal/config"
	"github.com/removethebg/rtbg/internal/logger"
	"github.com/removethebg/rtbg/internal/ui"
)

type contextKey string

// Context key for configuration
const ConfigKey contextKey = "config"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rtbg",
	Short: "Build tooling for the remove-the-bg package",
	Long: `rtbg vendors the Python runtime dependencies of remove-the-bg into the
package tree, bootstraps a development environment and smoke-tests the result.

Example usage:
  rtbg setup                 # Create .venv, install, vendor, build and test
  rtbg vendor                # Re-vendor rembg, Pillow, numpy and onnxruntime
  rtbg vendor --dry-run      # Show what would be vendored
  rtbg smoke                 # Run the smoke test scenarios
  rtbg size                  # Print the vendor directory size`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		app := appConfig(cmd)
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		app.Config = cfg
		app.ConfigPath = config.GetConfigPath(path)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel the command context; commands report the cancellation themselves.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewAppConfig(logger.NewStdoutLogger(os.Stdout), commander.NewReal())
	ctx = context.WithValue(ctx, ConfigKey, app)

	err := executeSafely(ctx, rootCmd)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// executeSafely turns a panic in a command into an error so the process
// still exits with status 1.
func executeSafely(ctx context.Context, c *cobra.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()
	return c.ExecuteContext(ctx)
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("rtbg {{.Version}} (commit %s, built %s)\n", GitCommit, BuildDate))

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default .rtbg.yaml in the current or home directory)")
}

// errReported marks failures whose details were already logged.
var errReported = errors.New("failure already reported")

// cancelled converts an interrupted run into the [CANCELLED] message.
func cancelled(cmd *cobra.Command, what string, err error) error {
	if err == nil || (cmd.Context().Err() == nil && !errors.Is(err, ui.ErrCanceled)) {
		return err
	}
	appConfig(cmd).Logger.Logf("\n[CANCELLED] %s cancelled by user\n", what)
	return fmt.Errorf("%w: %v", errReported, err)
}

func appConfig(cmd *cobra.Command) *AppConfig {
	if app, ok := cmd.Context().Value(ConfigKey).(*AppConfig); ok {
		return app
	}
	// Commands executed without Execute, e.g. from tests.
	return NewAppConfig(logger.NewStdoutLogger(cmd.OutOrStdout()), commander.NewReal())
}
