package commander

import (
	"context"
	"fmt"
	"strings"
)

// Commander abstracts command execution for testing
type Commander interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args []string, dir string) (output string, err error)
}

// ExitError is returned by Run when a process exits non-zero or cannot start.
// Stderr holds whatever the process wrote to its error stream.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("command %q exited with code %d", e.Command, e.Code)
	}
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Key builds the lookup key used by Mock and by log lines: name followed by args.
func Key(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
