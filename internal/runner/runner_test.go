package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/removethebg/rtbg/internal/commander"
	"github.com/removethebg/rtbg/internal/logger"
)

func TestRunner_Run(t *testing.T) {
	mock := commander.NewMock()
	mock.Responses["python -m venv .venv"] = "  created\n"
	mock.Errors["python build.py"] = &commander.ExitError{Command: "python build.py", Code: 2, Stderr: "missing setup\n"}

	rec := logger.NewRecorder(nil)
	r := New(mock, rec)

	ok := r.Run(context.Background(), Step{Description: "Creating virtual environment", Name: "python", Args: []string{"-m", "venv", ".venv"}})
	require.True(t, ok.OK)
	assert.Equal(t, "created", ok.Output)
	assert.True(t, rec.Contains("[SUCCESS] Creating virtual environment completed successfully"))

	failed := r.Run(context.Background(), Step{Description: "Building package", Name: "python", Args: []string{"build.py"}})
	assert.False(t, failed.OK)
	assert.Error(t, failed.Err)
	assert.Equal(t, "missing setup", failed.Stderr)
	assert.True(t, rec.Contains("[ERROR] Building package failed"))
	assert.True(t, rec.Contains("Error output: missing setup"))
}

func TestRunner_Output(t *testing.T) {
	mock := commander.NewMock()
	mock.Responses["python -c print(1)"] = "1\n"
	mock.Errors["python -c raise"] = &commander.ExitError{Command: "python -c raise", Code: 1, Stderr: "Traceback"}

	rec := logger.NewRecorder(nil)
	r := New(mock, rec)

	out, ok := r.Output(context.Background(), "python", "-c", "print(1)")
	assert.True(t, ok)
	assert.Equal(t, "1", out)

	out, ok = r.Output(context.Background(), "python", "-c", "raise")
	assert.False(t, ok)
	assert.Empty(t, out)
	assert.True(t, rec.Contains("[ERROR] Command failed: python -c raise"))
	assert.True(t, rec.Contains("Error: Traceback"))
}

func TestStep_Command(t *testing.T) {
	s := Step{Name: "pip", Args: []string{"install", "-r", "requirements.txt"}}
	assert.Equal(t, "pip install -r requirements.txt", s.Command())
}
