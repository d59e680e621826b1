package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/removethebg/rtbg/internal/commander"
	"github.com/removethebg/rtbg/internal/logger"
	"github.com/removethebg/rtbg/internal/ui"
)

// execute runs the root command with an isolated config file, a recording
// logger and a mock commander. Flag values persist on the package-level
// commands between calls, so tests pass every flag they depend on.
func execute(t *testing.T, mock *commander.Mock, args ...string) (*logger.Recorder, string, error) {
	t.Helper()
	if mock == nil {
		mock = commander.NewMock()
	}
	rec := logger.NewRecorder(nil)
	app := NewAppConfig(rec, mock)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	cfgPath := filepath.Join(t.TempDir(), "missing.yaml")
	rootCmd.SetArgs(append(args, "--config", cfgPath))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	ctx := context.WithValue(context.Background(), ConfigKey, app)
	err := run(ctx)
	return rec, out.String(), err
}

// run executes rootCmd with ctx. Cobra hands the root context only to
// subcommands that have none yet, so every command is reset first; otherwise
// a command keeps the AppConfig of the first test that ran it.
func run(ctx context.Context) error {
	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		c.SetContext(ctx)
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
	return rootCmd.ExecuteContext(ctx)
}

func TestSizeCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 3*1024*1024), 0644))

	_, out, err := execute(t, nil, "size", dir, "--bytes=false")
	require.NoError(t, err)
	assert.Contains(t, out, "3.0 MB")

	_, out, err = execute(t, nil, "size", dir, "--bytes")
	require.NoError(t, err)
	assert.Equal(t, "3145728\n", out)

	_, out, err = execute(t, nil, "size", filepath.Join(dir, "nope"), "--bytes")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestCleanCopyCommand(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	for rel, content := range map[string]string{
		"a.txt":          "a",
		"setup.py":       "setup()",
		"doc/readme.txt": "doc",
	} {
		p := filepath.Join(src, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}

	rec, _, err := execute(t, nil, "clean-copy", src, dst,
		"--exclude", "setup.py", "--exclude", "doc/", "--numpy=false", "--heuristic=false")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dst, "a.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "setup.py"))
	assert.NoDirExists(t, filepath.Join(dst, "doc"))
	assert.True(t, rec.Contains("excluded 2 entries"), rec.Lines())
}

func TestCleanCopyRejectsBadPattern(t *testing.T) {
	_, _, err := execute(t, nil, "clean-copy", t.TempDir(), t.TempDir(), "--exclude", "[", "--numpy=false")
	assert.Error(t, err)
}

func TestVendorDryRun(t *testing.T) {
	vendorDir := filepath.Join(t.TempDir(), "vendor")
	mock := commander.NewMock()

	rec, out, err := execute(t, mock, "vendor", "--dry-run", "--vendor-dir", vendorDir)
	require.NoError(t, err)

	assert.True(t, rec.Contains("[PLAN] numpy"), rec.Lines())
	assert.Empty(t, mock.Calls())
	assert.NoDirExists(t, vendorDir)
	assert.Contains(t, out, "dry run")
}

func TestVendorFailureIsReported(t *testing.T) {
	vendorDir := filepath.Join(t.TempDir(), "vendor")

	// No interpreter and no pip on the mock PATH.
	rec, _, err := execute(t, commander.NewMock(), "vendor", "--dry-run=false", "--vendor-dir", vendorDir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.True(t, rec.Contains("[ERROR] Vendoring process failed"), rec.Lines())
}

func TestVendorCancelled(t *testing.T) {
	rec := logger.NewRecorder(nil)
	app := NewAppConfig(rec, commander.NewMock())
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ConfigKey, app))
	cancel()

	rootCmd.SetArgs([]string{"vendor", "--dry-run=false", "--vendor-dir", t.TempDir(),
		"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := run(ctx)
	require.Error(t, err)
	assert.True(t, rec.Contains("[CANCELLED] Vendoring cancelled by user"), rec.Lines())
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtbg.yaml")

	_, _, err := execute(t, nil, "config", "init", path, "--force=false")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, _, err = execute(t, nil, "config", "init", path, "--force=false")
	assert.Error(t, err, "existing file must not be overwritten without --force")

	_, out, err := execute(t, nil, "config", "show", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "import_name: onnxruntime")

	_, out, err = execute(t, nil, "config", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"import_name": "PIL"`)

	_, _, err = execute(t, nil, "config", "show", "--format", "toml")
	assert.Error(t, err)
}

func TestCommandsUseTheCurrentContext(t *testing.T) {
	// The same subcommand run twice must log to the second recorder.
	vendorDir := filepath.Join(t.TempDir(), "vendor")
	first, _, err := execute(t, nil, "vendor", "--dry-run", "--vendor-dir", vendorDir)
	require.NoError(t, err)
	second, _, err := execute(t, nil, "vendor", "--dry-run", "--vendor-dir", vendorDir)
	require.NoError(t, err)

	assert.True(t, first.Contains("[PLAN]"), first.Lines())
	assert.True(t, second.Contains("[PLAN]"), second.Lines())
}

func TestExecuteSafelyRecoversPanics(t *testing.T) {
	c := &cobra.Command{
		Use:  "boom",
		RunE: func(*cobra.Command, []string) error { panic("index out of range") },
	}
	c.SetArgs([]string{})

	err := executeSafely(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected error: index out of range")
}

func TestCancelledReportsSpinnerQuit(t *testing.T) {
	rec := logger.NewRecorder(nil)
	c := &cobra.Command{Use: "copy"}
	c.SetContext(context.WithValue(context.Background(), ConfigKey, NewAppConfig(rec, commander.NewMock())))

	err := cancelled(c, "Copy", ui.ErrCanceled)
	assert.True(t, errors.Is(err, errReported))
	assert.True(t, rec.Contains("[CANCELLED] Copy cancelled by user"), rec.Lines())

	plain := errors.New("disk full")
	assert.Equal(t, plain, cancelled(c, "Copy", plain))
}

func TestVersionCommand(t *testing.T) {
	_, out, err := execute(t, nil, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)

	_, out, err = execute(t, nil, "version", "--short=false")
	require.NoError(t, err)
	assert.Contains(t, out, "commit: "+GitCommit)
}
