package commander

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Mock implements Commander for testing
type Mock struct {
	Commands      map[string]bool   // which commands exist
	Responses     map[string]string // command pattern -> output
	Errors        map[string]error  // command pattern -> error
	RecordedCalls []RecordedCall    // all calls made

	// Hook runs after recording and before the canned lookup. A non-nil
	// error from it is returned as the command's failure.
	Hook func(call RecordedCall) error

	mu sync.Mutex
}

// RecordedCall captures a command invocation
type RecordedCall struct {
	Name string
	Args []string
	Dir  string
}

// Key returns the lookup key for the recorded call.
func (c RecordedCall) Key() string { return Key(c.Name, c.Args) }

// NewMock creates a mock commander
func NewMock() *Mock {
	return &Mock{
		Commands:  make(map[string]bool),
		Responses: make(map[string]string),
		Errors:    make(map[string]error),
	}
}

// LookPath checks if a command exists in the mock
func (m *Mock) LookPath(name string) (string, error) {
	if m.Commands[name] {
		return "/usr/bin/" + name, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
}

// Run records the call and returns mocked response
func (m *Mock) Run(ctx context.Context, name string, args []string, dir string) (string, error) {
	call := RecordedCall{
		Name: name,
		Args: append([]string(nil), args...),
		Dir:  dir,
	}
	m.mu.Lock()
	m.RecordedCalls = append(m.RecordedCalls, call)
	m.mu.Unlock()

	if m.Hook != nil {
		if err := m.Hook(call); err != nil {
			return "", err
		}
	}

	key := call.Key()

	// Check for exact match first
	if err, ok := m.Errors[key]; ok {
		return "", err
	}
	if resp, ok := m.Responses[key]; ok {
		return resp, nil
	}

	// Longest prefix wins so specific patterns beat generic ones
	var (
		bestLen  = -1
		bestResp string
		bestErr  error
	)
	for pattern, err := range m.Errors {
		if strings.HasPrefix(key, pattern) && len(pattern) > bestLen {
			bestLen, bestErr, bestResp = len(pattern), err, ""
		}
	}
	for pattern, resp := range m.Responses {
		if strings.HasPrefix(key, pattern) && len(pattern) > bestLen {
			bestLen, bestErr, bestResp = len(pattern), nil, resp
		}
	}
	if bestLen >= 0 {
		return bestResp, bestErr
	}

	// Default response
	return "", nil
}

// Calls returns a snapshot of the recorded calls.
func (m *Mock) Calls() []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedCall(nil), m.RecordedCalls...)
}

// CallKeys returns the recorded calls rendered as lookup keys.
func (m *Mock) CallKeys() []string {
	calls := m.Calls()
	keys := make([]string, 0, len(calls))
	for _, c := range calls {
		keys = append(keys, c.Key())
	}
	return keys
}
