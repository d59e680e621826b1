package vendorer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/removethebg/rtbg/internal/cleancopy"
	"github.com/removethebg/rtbg/internal/fsutil"
	"github.com/removethebg/rtbg/internal/logger"
)

// Options configures one vendoring run.
type Options struct {
	// VendorDir receives one subtree per import name.
	VendorDir string
	// Dependencies are processed in order.
	Dependencies []Dependency
	// TempRoot is the parent of the scratch install directory; empty uses the OS default.
	TempRoot string
	// DryRun logs the plan without installing or writing anything.
	DryRun bool
	// Manifest writes vendor-manifest.yaml after a successful run.
	Manifest bool
}

// Report summarises a vendoring run.
type Report struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	TempDir      string
	Dependencies []VendoredDependency
	TotalBytes   int64
	DryRun       bool
}

// VendoredDependency is the outcome for one dependency.
type VendoredDependency struct {
	ImportName string
	Package    string
	Source     string
	Target     string
	Files      int
	Bytes      int64
	Filtered   bool
	Excluded   int
}

// Vendorer installs dependencies into a scratch directory and copies each one
// into the vendor directory, replacing whatever was there for that name.
//
// The run is fail-fast: an install or location failure aborts it. Subtrees
// already replaced earlier in the same run are kept; later ones are untouched.
type Vendorer struct {
	installer Installer
	locator   PackageLocator
	log       logger.Logger
	now       func() time.Time
}

// New creates a vendorer.
func New(installer Installer, locator PackageLocator, log logger.Logger) *Vendorer {
	if log == nil {
		log = logger.Nop()
	}
	return &Vendorer{installer: installer, locator: locator, log: log, now: time.Now}
}

// Run vendors opts.Dependencies into opts.VendorDir.
func (v *Vendorer) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{
		RunID:     ksuid.New().String(),
		StartedAt: v.now(),
		DryRun:    opts.DryRun,
	}
	v.log.Log("[START] Starting dependency vendoring process...")

	if opts.VendorDir == "" {
		return report, fmt.Errorf("vendor directory is not set")
	}
	if len(opts.Dependencies) == 0 {
		return report, fmt.Errorf("no dependencies to vendor")
	}

	filters := make([]*cleancopy.Filter, len(opts.Dependencies))
	for i, dep := range opts.Dependencies {
		if err := dep.Validate(); err != nil {
			return report, err
		}
		f, err := dep.Filter()
		if err != nil {
			return report, fmt.Errorf("dependency %s: %w", dep.ImportName, err)
		}
		filters[i] = f
	}

	if opts.DryRun {
		v.plan(opts)
		report.FinishedAt = v.now()
		return report, nil
	}

	tempDir, err := os.MkdirTemp(opts.TempRoot, "rtbg-vendor-")
	if err != nil {
		return report, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer os.RemoveAll(tempDir)
	report.TempDir = tempDir
	v.log.Logf("[TEMP] Using temporary directory: %s\n", tempDir)

	if err := os.MkdirAll(opts.VendorDir, 0755); err != nil {
		return report, fmt.Errorf("failed to create vendor directory: %w", err)
	}

	for i, dep := range opts.Dependencies {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		vd, err := v.vendorOne(ctx, dep, filters[i], tempDir, opts.VendorDir)
		if err != nil {
			v.log.Logf("[ERROR] Failed to vendor %s: %v\n", dep.ImportName, err)
			return report, fmt.Errorf("vendoring %s: %w", dep.ImportName, err)
		}
		report.Dependencies = append(report.Dependencies, vd)
	}

	total, err := fsutil.DirSize(opts.VendorDir)
	if err != nil {
		return report, err
	}
	report.TotalBytes = total
	report.FinishedAt = v.now()

	v.log.Log("[COMPLETE] Dependency vendoring completed!")
	v.log.Logf("[INFO] Vendor directory size: %s\n", fsutil.FormatMB(total))

	if opts.Manifest {
		if err := WriteManifest(opts.VendorDir, NewManifest(report)); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (v *Vendorer) vendorOne(ctx context.Context, dep Dependency, filter *cleancopy.Filter, tempDir, vendorDir string) (VendoredDependency, error) {
	vd := VendoredDependency{
		ImportName: dep.ImportName,
		Package:    dep.Package,
		Target:     filepath.Join(vendorDir, dep.ImportName),
		Filtered:   dep.Filtered(),
	}

	if err := v.installer.Install(ctx, dep, tempDir); err != nil {
		return vd, err
	}

	v.log.Logf("[VENDOR] Vendoring %s (import as %s)...\n", dep.Package, dep.ImportName)
	source, err := v.locator.Locate(ctx, dep.ImportName, tempDir)
	if err != nil {
		return vd, err
	}
	vd.Source = source
	v.log.Logf("   Copying %s → %s\n", source, vd.Target)

	staging, err := os.MkdirTemp(vendorDir, "."+dep.ImportName+".staging-")
	if err != nil {
		return vd, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)
	// MkdirTemp created the directory; the copy recreates it.
	if err := os.Remove(staging); err != nil {
		return vd, err
	}

	if vd.Filtered {
		stats, err := cleancopy.Copy(ctx, source, staging, filter)
		if err != nil {
			return vd, err
		}
		vd.Files, vd.Bytes, vd.Excluded = stats.Files, stats.Bytes, stats.Excluded()
		v.log.Logf("   Applied clean copying for %s (excluded %d entries)\n", dep.ImportName, vd.Excluded)
	} else {
		files, n, err := fsutil.CopyTree(source, staging)
		if err != nil {
			return vd, err
		}
		vd.Files, vd.Bytes = files, n
	}

	if err := os.RemoveAll(vd.Target); err != nil {
		return vd, fmt.Errorf("failed to remove previous %s: %w", vd.Target, err)
	}
	if err := os.Rename(staging, vd.Target); err != nil {
		return vd, fmt.Errorf("failed to move %s into place: %w", dep.ImportName, err)
	}

	v.log.Logf("[SUCCESS] Successfully vendored %s\n", dep.ImportName)
	return vd, nil
}

func (v *Vendorer) plan(opts Options) {
	v.log.Log("[PLAN] Dry run, nothing will be installed or written")
	for _, dep := range opts.Dependencies {
		mode := "full copy"
		if dep.Filtered() {
			mode = fmt.Sprintf("clean copy, %d patterns", len(dep.Exclude))
			if dep.Heuristic {
				mode += " + heuristic"
			}
		}
		v.log.Logf("[PLAN] %s (import as %s) → %s (%s)\n",
			dep.Package, dep.ImportName, filepath.Join(opts.VendorDir, dep.ImportName), mode)
	}
}
