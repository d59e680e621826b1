package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/removethebg/rtbg/internal/fsutil"
)

// sizeCmd represents the size command
var sizeCmd = &cobra.Command{
	Use:   "size [dir]",
	Short: "Print the total size of a directory",
	Long: `Size sums the sizes of all regular files below dir (the vendor directory by
default). A missing directory has size 0.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSize,
}

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().Bool("bytes", false, "print the exact byte count")
}

func runSize(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd)
	dir := app.Config.Vendor.Dir
	if len(args) > 0 {
		dir = args[0]
	}

	n, err := fsutil.DirSize(dir)
	if err != nil {
		return err
	}

	if exact, _ := cmd.Flags().GetBool("bytes"); exact {
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", dir, fsutil.FormatMB(n))
	return nil
}
