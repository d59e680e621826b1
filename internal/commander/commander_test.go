package commander

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
)

func TestMock_Run(t *testing.T) {
	m := NewMock()
	m.Responses["python --version"] = "Python 3.11.4"
	m.Responses["pip install"] = "ok"
	m.Errors["pip install numpy"] = errors.New("boom")

	tests := []struct {
		name    string
		cmd     string
		args    []string
		want    string
		wantErr bool
	}{
		{"exact response", "python", []string{"--version"}, "Python 3.11.4", false},
		{"prefix response", "pip", []string{"install", "rembg", "--target", "/tmp/x"}, "ok", false},
		{"longer error prefix wins", "pip", []string{"install", "numpy", "--target", "/tmp/x"}, "", true},
		{"default empty", "unknown", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Run(context.Background(), tt.cmd, tt.args, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if n := len(m.Calls()); n != len(tests) {
		t.Errorf("expected %d recorded calls, got %d", len(tests), n)
	}
}

func TestMock_LookPath(t *testing.T) {
	m := NewMock()
	m.Commands["pip3"] = true

	if _, err := m.LookPath("pip"); err == nil {
		t.Error("pip should not be found")
	}
	p, err := m.LookPath("pip3")
	if err != nil || p != "/usr/bin/pip3" {
		t.Errorf("LookPath(pip3) = %q, %v", p, err)
	}
}

func TestMock_Hook(t *testing.T) {
	m := NewMock()
	m.Responses["git"] = "fine"
	m.Hook = func(call RecordedCall) error {
		if call.Dir == "/forbidden" {
			return errors.New("denied")
		}
		return nil
	}

	if _, err := m.Run(context.Background(), "git", []string{"status"}, "/forbidden"); err == nil {
		t.Error("expected hook error")
	}
	out, err := m.Run(context.Background(), "git", []string{"status"}, "/ok")
	if err != nil || out != "fine" {
		t.Errorf("got %q, %v", out, err)
	}
}

func TestReal_RunCapturesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	r := NewReal()

	out, err := r.Run(context.Background(), "sh", []string{"-c", "echo hello"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("stdout = %q", out)
	}

	_, err = r.Run(context.Background(), "sh", []string{"-c", "echo broken >&2; exit 3"}, "")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T (%v)", err, err)
	}
	if exitErr.Code != 3 {
		t.Errorf("code = %d, want 3", exitErr.Code)
	}
	if strings.TrimSpace(exitErr.Stderr) != "broken" {
		t.Errorf("stderr = %q", exitErr.Stderr)
	}
}
