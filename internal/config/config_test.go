package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	var names []string
	for _, d := range cfg.Vendor.Dependencies {
		names = append(names, d.ImportName+"="+d.Package)
	}
	assert.Equal(t, []string{"rembg=rembg", "PIL=Pillow", "numpy=numpy", "onnxruntime=onnxruntime"}, names)

	for _, d := range cfg.Vendor.Dependencies {
		if d.ImportName == "numpy" {
			assert.Contains(t, d.Exclude, "setup.py")
		} else {
			assert.Empty(t, d.Exclude, "only numpy is filtered by default")
		}
	}
	assert.Equal(t, "3.9", cfg.Setup.MinPython)
}

func TestDefaultDependencies_AreIndependentCopies(t *testing.T) {
	a := DefaultDependencies()
	a[2].Exclude[0] = "mutated"
	b := DefaultDependencies()
	assert.Equal(t, "setup.py", b[2].Exclude[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errSub string
	}{
		{"empty python", func(c *Config) { c.Python = " " }, "python"},
		{"empty vendor dir", func(c *Config) { c.Vendor.Dir = "" }, "vendor.dir"},
		{"no deps", func(c *Config) { c.Vendor.Dependencies = nil }, "at least one"},
		{"missing import", func(c *Config) { c.Vendor.Dependencies[0].ImportName = "" }, "import_name is required"},
		{"path import", func(c *Config) { c.Vendor.Dependencies[0].ImportName = "../evil" }, "valid Python identifier"},
		{"statement import", func(c *Config) { c.Vendor.Dependencies[0].ImportName = "numpy; import os" }, "valid Python identifier"},
		{"dotted import", func(c *Config) { c.Vendor.Dependencies[0].ImportName = "PIL.Image" }, "valid Python identifier"},
		{"leading digit", func(c *Config) { c.Vendor.Dependencies[0].ImportName = "3d" }, "valid Python identifier"},
		{"missing package", func(c *Config) { c.Vendor.Dependencies[1].Package = "" }, "package is required"},
		{"duplicate", func(c *Config) { c.Vendor.Dependencies[1].ImportName = "rembg" }, "duplicate"},
		{"bad pattern", func(c *Config) { c.Vendor.Dependencies[0].Exclude = []string{"[oops"} }, "invalid exclude pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestSaveAndLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", ".rtbg.yaml")
	cfg := DefaultConfig()
	cfg.Python = "python3.11"
	cfg.Vendor.Dependencies = append(cfg.Vendor.Dependencies, DependencyConfig{ImportName: "scipy", Package: "scipy", Heuristic: true})

	require.NoError(t, SaveConfig(cfg, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "import_name: scipy"))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Path)
	cfg.Path = path
	assert.Equal(t, cfg, loaded)
}

func TestSaveAndLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtbg.json")
	cfg := DefaultConfig()
	cfg.Server.Schedule = "@daily"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "@daily", loaded.Server.Schedule)
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Empty(t, cfg.Path)
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("python: /opt/py/bin/python\nsetup:\n  min_python: \"3.10\"\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/py/bin/python", cfg.Python)
	assert.Equal(t, "3.10", cfg.Setup.MinPython)
	assert.Equal(t, ".venv", cfg.Setup.VenvDir)
	assert.Len(t, cfg.Vendor.Dependencies, 4)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("vendor: [unterminated"), 0644))
	_, err := LoadConfig(broken)
	assert.Error(t, err)

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("vendor:\n  dependencies:\n    - {import_name: a, package: a}\n    - {import_name: a, package: b}\n"), 0644))
	_, err = LoadConfig(dup)
	assert.ErrorContains(t, err, "duplicate")
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "/explicit.yaml", GetConfigPath("/explicit.yaml"))
}
