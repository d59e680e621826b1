package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/removethebg/rtbg/internal/cleancopy"
	"github.com/removethebg/rtbg/internal/fsutil"
	"github.com/removethebg/rtbg/internal/logger"
	"github.com/removethebg/rtbg/internal/ui"
)

// cleanCopyCmd represents the clean-copy command
var cleanCopyCmd = &cobra.Command{
	Use:   "clean-copy <src> <dst>",
	Short: "Copy a directory tree, leaving out excluded files and directories",
	Long: `Clean-copy mirrors src into dst. Patterns are matched against the path
relative to src and against the base name; "*" stays within one path segment,
"**" spans directories, a trailing "/" only matches directories and a leading
"/" anchors the pattern to src. Excluded directories are not descended into.

Example usage:
  rtbg clean-copy site-packages/numpy out/numpy --numpy
  rtbg clean-copy src dst --exclude "*.pyc" --exclude "tests/"
  rtbg clean-copy src dst --heuristic`,
	Args: cobra.ExactArgs(2),
	RunE: runCleanCopy,
}

func init() {
	rootCmd.AddCommand(cleanCopyCmd)

	cleanCopyCmd.Flags().StringSliceP("exclude", "e", []string{}, "exclusion pattern (repeatable)")
	cleanCopyCmd.Flags().Bool("numpy", false, "add the numpy source/build/test exclusions")
	cleanCopyCmd.Flags().Bool("heuristic", false, "also drop documentation trees and dot-files")
}

func runCleanCopy(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd)
	src, dst := args[0], args[1]

	patterns, _ := cmd.Flags().GetStringSlice("exclude")
	if numpy, _ := cmd.Flags().GetBool("numpy"); numpy {
		patterns = append(patterns, cleancopy.NumpyPatterns...)
	}
	heuristic, _ := cmd.Flags().GetBool("heuristic")

	filter, err := cleancopy.NewFilter(patterns, heuristic)
	if err != nil {
		return err
	}

	var stats cleancopy.Stats
	copyTree := func(ctx context.Context, log logger.Logger) error {
		log.Logf("[COPY] %s → %s\n", src, dst)
		var e error
		stats, e = cleancopy.Copy(ctx, src, dst, filter)
		return e
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if ui.IsInteractive() && !verbose {
		err = ui.RunSpinner(cmd.Context(), "Copying "+src, func(ctx context.Context, status func(string)) error {
			return copyTree(ctx, logger.NewUILogger(status))
		})
	} else {
		err = copyTree(cmd.Context(), app.Logger)
	}
	if err != nil {
		return cancelled(cmd, "Copy", err)
	}

	app.Logger.Logf("[SUCCESS] Copied %d files (%s), excluded %d entries\n",
		stats.Files, fsutil.FormatMB(stats.Bytes), stats.Excluded())
	if verbose {
		for _, d := range stats.PrunedDirs {
			app.Logger.Logf("   pruned %s/\n", d)
		}
		for _, f := range stats.SkippedFile {
			app.Logger.Logf("   skipped %s\n", f)
		}
	}
	return nil
}

