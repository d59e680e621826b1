package vendorer

import (
	"context"
	"errors"
	"fmt"

	"github.com/removethebg/rtbg/internal/runner"
)

var (
	// ErrInstallFailed wraps every installation failure.
	ErrInstallFailed = errors.New("install failed")
	// ErrNoInstaller is returned when neither the interpreter nor pip can be found.
	ErrNoInstaller = errors.New("no pip installation found")
)

// Installer installs one dependency into an isolated target directory
type Installer interface {
	Install(ctx context.Context, dep Dependency, target string) error
}

// PipInstaller installs Python packages with pip --target so nothing touches
// the interpreter's own site-packages.
type PipInstaller struct {
	runner *runner.Runner
	python string
}

// NewPipInstaller creates a new pip installer
func NewPipInstaller(r *runner.Runner, python string) *PipInstaller {
	if python == "" {
		python = "python"
	}
	return &PipInstaller{runner: r, python: python}
}

// Install runs `pip install <package> --target <target>`
func (i *PipInstaller) Install(ctx context.Context, dep Dependency, target string) error {
	base, err := i.pipCommand()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInstallFailed, dep.Package, err)
	}

	args := append(append([]string(nil), base[1:]...), "install", dep.Package, "--target", target)
	res := i.runner.Run(ctx, runner.Step{
		Tag:         "INSTALL",
		Description: "Installing " + dep.Package,
		Name:        base[0],
		Args:        args,
	})
	if !res.OK {
		return fmt.Errorf("%w: %s: %w", ErrInstallFailed, dep.Package, res.Err)
	}
	return nil
}

// pipCommand prefers `<python> -m pip` so packages are built for the same
// interpreter that later imports them, then falls back to pip and pip3.
func (i *PipInstaller) pipCommand() ([]string, error) {
	c := i.runner.Commander()
	if _, err := c.LookPath(i.python); err == nil {
		return []string{i.python, "-m", "pip"}, nil
	}
	if _, err := c.LookPath("pip"); err == nil {
		return []string{"pip"}, nil
	}
	if _, err := c.LookPath("pip3"); err == nil {
		return []string{"pip3"}, nil
	}
	return nil, ErrNoInstaller
}
