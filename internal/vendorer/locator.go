package vendorer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/removethebg/rtbg/internal/runner"
)

// ErrPackageNotFound is returned when an installed package cannot be located
// inside the install directory.
var ErrPackageNotFound = errors.New("package not found after install")

// PackageLocator finds the root directory of an installed package
type PackageLocator interface {
	Locate(ctx context.Context, importName, installDir string) (string, error)
}

// InterpreterLocator asks the interpreter where the package was imported from,
// with installDir first on sys.path. When that fails it falls back to the
// first directory in installDir whose name starts with the import name.
type InterpreterLocator struct {
	runner *runner.Runner
	python string
}

// NewInterpreterLocator creates a locator using the given interpreter.
func NewInterpreterLocator(r *runner.Runner, python string) *InterpreterLocator {
	if python == "" {
		python = "python"
	}
	return &InterpreterLocator{runner: r, python: python}
}

// Locate returns the package root. The result always lies inside installDir.
func (l *InterpreterLocator) Locate(ctx context.Context, importName, installDir string) (string, error) {
	if !identifier.MatchString(importName) {
		return "", fmt.Errorf("%w: invalid import name %q", ErrPackageNotFound, importName)
	}
	script := fmt.Sprintf("import sys; sys.path.insert(0, %q); import %s; print(%s.__file__)", installDir, importName, importName)
	if out, ok := l.runner.Output(ctx, l.python, "-c", script); ok {
		if root, ok := packageRoot(lastLine(out), installDir); ok {
			return root, nil
		}
	}

	if root, ok := globPackage(importName, installDir); ok {
		return root, nil
	}
	return "", fmt.Errorf("%w: %s in %s", ErrPackageNotFound, importName, installDir)
}

// packageRoot maps a module's __file__ to its package directory: the parent
// of __init__.py, or for anything else the grandparent. Paths outside
// installDir are rejected so a system-wide copy is never vendored.
func packageRoot(file, installDir string) (string, bool) {
	if file == "" || file == "None" {
		return "", false
	}
	file = filepath.Clean(file)
	root := filepath.Dir(file)
	if filepath.Base(file) != "__init__.py" {
		root = filepath.Dir(root)
	}
	if !within(root, installDir) {
		return "", false
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return "", false
	}
	return root, true
}

func globPackage(importName, installDir string) (string, bool) {
	exact := filepath.Join(installDir, importName)
	if info, err := os.Stat(exact); err == nil && info.IsDir() {
		return exact, true
	}
	matches, err := filepath.Glob(filepath.Join(installDir, importName+"*"))
	if err != nil {
		return "", false
	}
	sort.Strings(matches)
	for _, m := range matches {
		if isMetadataDir(m) {
			continue
		}
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			return m, true
		}
	}
	return "", false
}

// isMetadataDir reports pip's sibling directories that are never the package.
func isMetadataDir(path string) bool {
	for _, suffix := range []string{".dist-info", ".egg-info", ".libs", ".data"} {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
