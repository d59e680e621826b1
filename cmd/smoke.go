package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/removethebg/rtbg/internal/smoketest"
	"github.com/removethebg/rtbg/internal/ui"
)

// smokeCmd represents the smoke command
var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run the background-removal smoke tests",
	Long: `Smoke drives the packaged Python library through three scenarios:
  Core Functionality  remove the background of a generated image
  CLI Functionality   process a folder of three generated images
  Edge Cases          missing and unsupported inputs must fail with distinct errors

Exits non-zero unless every scenario passes.`,
	Args: cobra.NoArgs,
	RunE: runSmoke,
}

func init() {
	rootCmd.AddCommand(smokeCmd)

	smokeCmd.Flags().String("python", "", "Python interpreter used to import the package")
	smokeCmd.Flags().String("root", ".", "directory containing the package")
	smokeCmd.Flags().String("package", "", "package to import (default from config)")
}

func runSmoke(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd)
	cfg := app.Config

	python := cfg.Python
	if p, _ := cmd.Flags().GetString("python"); p != "" {
		python = p
	}
	pkg := cfg.Smoke.Package
	if p, _ := cmd.Flags().GetString("package"); p != "" {
		pkg = p
	}
	root, _ := cmd.Flags().GetString("root")
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	remover := smoketest.NewPythonRemover(app.Commander, python, pkg, absRoot)
	summary := smoketest.NewSuite(remover, app.Logger, "", cfg.Smoke.OutputSuffix).Run(cmd.Context())
	if cmd.Context().Err() != nil {
		return cancelled(cmd, "Tests", cmd.Context().Err())
	}

	fmt.Fprint(cmd.OutOrStdout(), "\n"+ui.RenderSmokeSummary(summary))
	if !summary.Passed() {
		return fmt.Errorf("%w: %d of %d scenarios failed", errReported,
			len(summary.Results)-summary.PassedCount(), len(summary.Results))
	}
	return nil
}
