package runner

import (
	"context"
	"errors"
	"strings"

	"github.com/removethebg/rtbg/internal/commander"
	"github.com/removethebg/rtbg/internal/logger"
)

// Step is one command in a sequence together with the text shown to the operator.
type Step struct {
	// Tag prefixes the progress line, e.g. INSTALL. Defaults to BUILD.
	Tag         string
	Description string
	Name        string
	Args        []string
	Dir         string
}

// Command renders the step the way it would be typed in a shell.
func (s Step) Command() string {
	return commander.Key(s.Name, s.Args)
}

// Result is the outcome of a single step. Failures are values, not panics or
// propagated errors, so orchestration code decides whether to continue.
type Result struct {
	OK     bool
	Output string
	Stderr string
	Err    error
}

// Runner executes steps through a Commander and reports progress to a Logger.
type Runner struct {
	commander commander.Commander
	log       logger.Logger
}

// New creates a runner. A nil logger discards output.
func New(c commander.Commander, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{commander: c, log: log}
}

// Run executes a step synchronously. No retries.
func (r *Runner) Run(ctx context.Context, step Step) Result {
	tag := step.Tag
	if tag == "" {
		tag = "BUILD"
	}
	r.log.Logf("[%s] %s...\n", tag, step.Description)

	out, err := r.commander.Run(ctx, step.Name, step.Args, step.Dir)
	if err != nil {
		res := Result{Output: strings.TrimSpace(out), Err: err}
		var exitErr *commander.ExitError
		if errors.As(err, &exitErr) {
			res.Stderr = strings.TrimSpace(exitErr.Stderr)
		}
		r.log.Logf("[ERROR] %s failed: %v\n", step.Description, err)
		if res.Stderr != "" {
			r.log.Logf("Error output: %s\n", res.Stderr)
		}
		return res
	}

	r.log.Logf("[SUCCESS] %s completed successfully\n", step.Description)
	return Result{OK: true, Output: strings.TrimSpace(out)}
}

// Output runs a command quietly and returns its trimmed stdout. The boolean is
// false when the command failed; the failure is still logged.
func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, bool) {
	out, err := r.commander.Run(ctx, name, args, "")
	if err != nil {
		r.log.Logf("[ERROR] Command failed: %s\n", commander.Key(name, args))
		var exitErr *commander.ExitError
		if errors.As(err, &exitErr) && strings.TrimSpace(exitErr.Stderr) != "" {
			r.log.Logf("Error: %s\n", strings.TrimSpace(exitErr.Stderr))
		} else {
			r.log.Logf("Error: %v\n", err)
		}
		return "", false
	}
	return strings.TrimSpace(out), true
}

// Commander exposes the underlying commander for callers that need LookPath.
func (r *Runner) Commander() commander.Commander {
	return r.commander
}
