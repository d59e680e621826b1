package commander

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Real implements Commander using actual system commands
type Real struct{}

// NewReal creates a real commander
func NewReal() Commander {
	return &Real{}
}

// LookPath checks if a command exists
func (r *Real) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes a command and returns its stdout. Stderr is kept apart so that
// failures can report it without mixing it into parsed output.
func (r *Real) Run(ctx context.Context, name string, args []string, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	exitErr := &ExitError{
		Command: Key(name, args),
		Stderr:  stderr.String(),
		Err:     err,
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		exitErr.Code = ee.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		exitErr.Err = ctxErr
	}
	return stdout.String(), exitErr
}
