package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/removethebg/rtbg/internal/bootstrap"
)

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Bootstrap the development environment",
	Long: `Setup checks the Python interpreter version and then, in order:
creates the virtual environment, upgrades pip, installs the requirements,
vendors dependencies, builds the package and runs the smoke tests.

The first failing step stops the run. Completed steps are kept.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().String("python", "", "Python interpreter used to create the environment")
	setupCmd.Flags().String("venv", "", "virtual environment directory (default from config)")
}

func runSetup(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd)
	cfg := *app.Config
	if p, _ := cmd.Flags().GetString("python"); p != "" {
		cfg.Python = p
	}
	if v, _ := cmd.Flags().GetString("venv"); v != "" {
		cfg.Setup.VenvDir = v
	}

	b := bootstrap.New(app.Runner(), &cfg, runtime.GOOS, app.Logger)
	if err := b.Run(cmd.Context()); err != nil {
		if cmd.Context().Err() != nil {
			return cancelled(cmd, "Setup", err)
		}
		// The bootstrapper already logged the failing step.
		return fmt.Errorf("%w: %v", errReported, err)
	}
	return nil
}
