package cleancopy

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/removethebg/rtbg/internal/fsutil"
)

// Stats summarises one clean copy.
type Stats struct {
	Files       int
	Bytes       int64
	PrunedDirs  []string
	SkippedFile []string
}

// Excluded returns how many entries the filter removed.
func (s Stats) Excluded() int {
	return len(s.PrunedDirs) + len(s.SkippedFile)
}

// Copy mirrors src into dst, leaving out everything the filter excludes.
// Excluded directories are pruned before descent, so nothing below them is
// visited. dst is created when absent; callers remove stale content first.
func Copy(ctx context.Context, src, dst string, filter *Filter) (Stats, error) {
	var stats Stats

	info, err := os.Stat(src)
	if err != nil {
		return stats, fmt.Errorf("failed to stat source %s: %w", src, err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("source %s is not a directory", src)
	}
	if err := os.MkdirAll(dst, 0755); err != nil {
		return stats, fmt.Errorf("failed to create target %s: %w", dst, err)
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == src {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		slashRel := filepath.ToSlash(rel)

		if filter.Excluded(slashRel, d.IsDir()) {
			if d.IsDir() {
				stats.PrunedDirs = append(stats.PrunedDirs, slashRel)
				return fs.SkipDir
			}
			stats.SkippedFile = append(stats.SkippedFile, slashRel)
			return nil
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			// Links to files are copied by content. Links to directories and
			// dangling links are recreated, since the walk does not follow them.
			if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
				if err := fsutil.CopySymlink(path, target); err != nil {
					return err
				}
				stats.Files++
				return nil
			}
		case !d.Type().IsRegular():
			return nil
		}

		n, err := fsutil.CopyFile(path, target)
		if err != nil {
			return err
		}
		stats.Files++
		stats.Bytes += n
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("clean copy of %s failed: %w", src, err)
	}
	return stats, nil
}
