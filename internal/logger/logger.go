package logger

import (
	"io"
	"sync"
)

// Logger is the narrow logging surface shared by every package. Messages carry
// a bracketed tag such as [VENDOR] or [ERROR] at the start of the line.
type Logger interface {
	Logf(format string, args ...interface{})
	Log(msg string)
}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Logf(string, ...interface{}) {}
func (nopLogger) Log(string)                  {}

// Recorder keeps every line in memory. Tests use it to assert on output.
type Recorder struct {
	mu    sync.Mutex
	lines []string
	tee   io.Writer
}

// NewRecorder creates a recorder, optionally mirroring lines to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{tee: w}
}
