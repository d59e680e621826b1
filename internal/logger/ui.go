package logger

import (
	"fmt"
	"strings"
)

// UILogger forwards each message to a status callback, typically the one
// handed out by ui.RunSpinner, so the latest line replaces the previous one.
type UILogger struct {
	status func(string)
}

// NewUILogger returns a logger that reports through status.
func NewUILogger(status func(string)) *UILogger {
	return &UILogger{status: status}
}

func (l *UILogger) Logf(format string, args ...interface{}) {
	l.Log(fmt.Sprintf(format, args...))
}

func (l *UILogger) Log(msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" || l.status == nil {
		return
	}
	l.status(msg)
}
