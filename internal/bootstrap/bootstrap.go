package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/removethebg/rtbg/internal/config"
	"github.com/removethebg/rtbg/internal/logger"
	"github.com/removethebg/rtbg/internal/runner"
)

// ErrUnsupportedInterpreter is returned when the interpreter is older than the
// configured minimum or its version cannot be determined.
var ErrUnsupportedInterpreter = errors.New("unsupported python version")

// StepError reports the step a setup run stopped at.
type StepError struct {
	Index int
	Step  runner.Step
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("setup failed at step: %s", e.Step.Description)
}

func (e *StepError) Unwrap() error { return e.Err }

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// Version is a parsed interpreter version.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) semver() string {
	return "v" + v.String()
}

// ParseVersion extracts X.Y[.Z] from output such as "Python 3.11.4".
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: cannot parse %q", ErrUnsupportedInterpreter, strings.TrimSpace(s))
	}
	var v Version
	fmt.Sscan(m[1], &v.Major)
	fmt.Sscan(m[2], &v.Minor)
	if m[3] != "" {
		fmt.Sscan(m[3], &v.Patch)
	}
	return v, nil
}

// AtLeast reports whether v >= min, where min is "X.Y" or "X.Y.Z".
func (v Version) AtLeast(min string) (bool, error) {
	want := "v" + strings.TrimPrefix(strings.TrimSpace(min), "v")
	if !semver.IsValid(want) {
		return false, fmt.Errorf("invalid minimum version %q", min)
	}
	return semver.Compare(v.semver(), want) >= 0, nil
}

// Bootstrapper prepares a development environment: it checks the interpreter
// and then runs the setup steps in order, stopping at the first failure.
// Completed steps are not rolled back.
type Bootstrapper struct {
	runner *runner.Runner
	cfg    *config.Config
	goos   string
	log    logger.Logger
}

// New creates a bootstrapper for the given target OS (runtime.GOOS in production).
func New(r *runner.Runner, cfg *config.Config, goos string, log logger.Logger) *Bootstrapper {
	if log == nil {
		log = logger.Nop()
	}
	return &Bootstrapper{runner: r, cfg: cfg, goos: goos, log: log}
}

// CheckInterpreter verifies the configured interpreter meets the minimum version.
func (b *Bootstrapper) CheckInterpreter(ctx context.Context) (Version, error) {
	out, ok := b.runner.Output(ctx, b.cfg.Python, "--version")
	if !ok {
		return Version{}, fmt.Errorf("%w: %s --version failed", ErrUnsupportedInterpreter, b.cfg.Python)
	}
	v, err := ParseVersion(out)
	if err != nil {
		return Version{}, err
	}
	okVersion, err := v.AtLeast(b.cfg.Setup.MinPython)
	if err != nil {
		return v, err
	}
	if !okVersion {
		return v, fmt.Errorf("%w: Python %s+ required, but you have %d.%d",
			ErrUnsupportedInterpreter, b.cfg.Setup.MinPython, v.Major, v.Minor)
	}
	return v, nil
}

// Run checks the interpreter and executes every step. No step runs when the
// interpreter check fails.
func (b *Bootstrapper) Run(ctx context.Context) error {
	b.log.Log("[SETUP] Setting up remove-the-bg development environment...")
	b.log.Log("")

	v, err := b.CheckInterpreter(ctx)
	if err != nil {
		b.log.Logf("[ERROR] %v\n", err)
		return err
	}
	b.log.Logf("[SUCCESS] Python %s detected\n", v)

	for i, step := range Plan(b.cfg, b.goos) {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := b.runner.Run(ctx, step)
		if !res.OK {
			b.log.Logf("\n[ERROR] Setup failed at step: %s\n", step.Description)
			return &StepError{Index: i, Step: step, Err: res.Err}
		}
		b.log.Log("")
	}

	b.nextSteps()
	return nil
}

func (b *Bootstrapper) nextSteps() {
	p := paths(b.cfg.Setup.VenvDir, b.goos)
	b.log.Log("[SUCCESS] Setup completed successfully!")
	b.log.Log("")
	b.log.Log("[NEXT] Next steps:")
	b.log.Logf("1. Activate virtual environment: %s\n", p.activate)
	b.log.Log("2. Make your changes to the code")
	b.log.Log("3. Test your changes: rtbg smoke")
	b.log.Logf("4. Build package: python %s\n", b.cfg.Setup.BuildScript)
	b.log.Log("5. Submit a pull request")
}
