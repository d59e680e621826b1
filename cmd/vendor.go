package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/removethebg/rtbg/internal/config"
	"github.com/removethebg/rtbg/internal/logger"
	"github.com/removethebg/rtbg/internal/runner"
	"github.com/removethebg/rtbg/internal/ui"
	"github.com/removethebg/rtbg/internal/vendorer"
)

// vendorCmd represents the vendor command
var vendorCmd = &cobra.Command{
	Use:   "vendor",
	Short: "Vendor runtime dependencies into the package tree",
	Long: `Vendor installs each configured dependency into a temporary directory and
copies it into the vendor directory under its import name, replacing any
previous copy. numpy is copied through a filter that drops the build files
and source-checkout markers that break imports from a vendored tree.

The run stops at the first dependency that fails to install or cannot be
located. Dependencies vendored before the failure stay in place.

Example usage:
  rtbg vendor
  rtbg vendor --vendor-dir build/vendor
  rtbg vendor --python .venv/bin/python --dry-run`,
	Args: cobra.NoArgs,
	RunE: runVendor,
}

func init() {
	rootCmd.AddCommand(vendorCmd)

	vendorCmd.Flags().String("vendor-dir", "", "vendor directory (default from config)")
	vendorCmd.Flags().Bool("dry-run", false, "print the plan without installing anything")
	vendorCmd.Flags().String("python", "", "Python interpreter used for pip and introspection")
}

func runVendor(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd)
	cfg := app.Config
	log := app.Logger

	opts := vendorOptions(cfg)
	if dir, _ := cmd.Flags().GetString("vendor-dir"); dir != "" {
		opts.VendorDir = dir
	}
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
	python := cfg.Python
	if p, _ := cmd.Flags().GetString("python"); p != "" {
		python = p
	}

	log.Log("[VENDOR] Remove-the-BG Dependency Vendoring Script")
	log.Log(strings.Repeat("=", 50))

	report, err := newVendorer(app.Runner(), python, log).Run(cmd.Context(), opts)
	if err != nil {
		if cmd.Context().Err() != nil {
			return cancelled(cmd, "Vendoring", err)
		}
		log.Logf("\n[ERROR] Vendoring process failed. Please check the errors above.\n")
		return fmt.Errorf("%w: %v", errReported, err)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose || report.DryRun {
		fmt.Fprint(cmd.OutOrStdout(), "\n"+ui.RenderVendorReport(report))
	}
	if !report.DryRun {
		log.Log("\n[SUCCESS] All dependencies have been successfully vendored!")
		log.Log("[INFO] Your package is now self-contained and ready for distribution.")
	}
	return nil
}

func vendorOptions(cfg *config.Config) vendorer.Options {
	return vendorer.Options{
		VendorDir:    cfg.Vendor.Dir,
		Dependencies: vendorer.FromConfig(cfg.Vendor.Dependencies),
		Manifest:     cfg.Vendor.Manifest,
	}
}

func newVendorer(r *runner.Runner, python string, log logger.Logger) *vendorer.Vendorer {
	return vendorer.New(
		vendorer.NewPipInstaller(r, python),
		vendorer.NewInterpreterLocator(r, python),
		log,
	)
}
