package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/removethebg/rtbg/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the rtbg configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Long: `Init writes the default configuration to path (default .rtbg.yaml, or the
file given with --config). A .json extension writes JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	configShowCmd.Flags().String("format", "yaml", "output format (yaml, json)")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd)

	path, _ := cmd.Flags().GetString("config")
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		path = ".rtbg.yaml"
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return err
	}
	app.Logger.Logf("[SUCCESS] Wrote default configuration to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd)

	format, _ := cmd.Flags().GetString("format")
	target := "config.yaml"
	switch format {
	case "yaml", "yml":
	case "json":
		target = "config.json"
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	data, err := config.Marshal(app.Config, target)
	if err != nil {
		return err
	}
	if app.ConfigPath != "" {
		if _, statErr := os.Stat(app.ConfigPath); statErr == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "# loaded from %s\n", app.ConfigPath)
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if format == "json" {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}
