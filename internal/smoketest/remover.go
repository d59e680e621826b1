package smoketest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/removethebg/rtbg/internal/commander"
)

var (
	// ErrInputNotFound is the "file not found" kind raised for a missing input.
	ErrInputNotFound = errors.New("input file not found")
	// ErrUnsupportedFormat is the "value/format" kind raised for content that is not an image.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Remover is the background-removal surface of the packaged library.
type Remover interface {
	// RemoveBackground processes one image and returns the output path.
	RemoveBackground(ctx context.Context, input string) (string, error)
	// ProcessFolder writes one suffixed output per image found in dir.
	ProcessFolder(ctx context.Context, dir string) error
}

// PythonRemover drives the packaged Python library through the interpreter.
type PythonRemover struct {
	commander commander.Commander
	python    string
	pkg       string
	root      string
}

// NewPythonRemover creates a remover importing pkg with root prepended to sys.path.
func NewPythonRemover(c commander.Commander, python, pkg, root string) *PythonRemover {
	if python == "" {
		python = "python"
	}
	return &PythonRemover{commander: c, python: python, pkg: pkg, root: root}
}

func (p *PythonRemover) RemoveBackground(ctx context.Context, input string) (string, error) {
	script := fmt.Sprintf("import sys; sys.path.insert(0, %q); from %s import remove_background; print(remove_background(%q))",
		p.root, p.pkg, input)
	out, err := p.commander.Run(ctx, p.python, []string{"-c", script}, p.root)
	if err != nil {
		return "", classify(err)
	}
	path := lastLine(out)
	if path == "" {
		return "", fmt.Errorf("remove_background returned no output path")
	}
	return path, nil
}

func (p *PythonRemover) ProcessFolder(ctx context.Context, dir string) error {
	script := fmt.Sprintf("import sys; sys.path.insert(0, %q); from %s.cli import process_folder; sys.exit(0 if process_folder(%q) else 1)",
		p.root, p.pkg, dir)
	if _, err := p.commander.Run(ctx, p.python, []string{"-c", script}, p.root); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps the Python exception at the end of a traceback onto the
// package's error kinds.
func classify(err error) error {
	var exitErr *commander.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	last := lastLine(exitErr.Stderr)
	switch {
	case strings.HasPrefix(last, "FileNotFoundError"):
		return fmt.Errorf("%w: %s", ErrInputNotFound, last)
	case strings.HasPrefix(last, "ValueError"):
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, last)
	case last != "":
		return fmt.Errorf("%s: %w", last, err)
	}
	return err
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
