package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type StdoutLogger struct {
	Out io.Writer
}

// NewStdoutLogger returns a logger writing to w, or to os.Stdout when w is nil.
func NewStdoutLogger(w io.Writer) *StdoutLogger {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutLogger{Out: w}
}

func (l *StdoutLogger) Logf(format string, args ...interface{}) { fmt.Fprintf(l.out(), format, args...) }
func (l *StdoutLogger) Log(msg string)                          { fmt.Fprintln(l.out(), msg) }

func (l *StdoutLogger) out() io.Writer {
	if l.Out == nil {
		return os.Stdout
	}
	return l.Out
}

func (r *Recorder) Logf(format string, args ...interface{}) {
	r.add(fmt.Sprintf(format, args...))
}

func (r *Recorder) Log(msg string) { r.add(msg + "\n") }

func (r *Recorder) add(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		r.lines = append(r.lines, line)
	}
	if r.tee != nil {
		fmt.Fprint(r.tee, text)
	}
}

// Lines returns a copy of everything logged so far, one entry per line.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Contains reports whether any logged line contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, line := range r.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
