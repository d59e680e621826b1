package bootstrap

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/removethebg/rtbg/internal/config"
	"github.com/removethebg/rtbg/internal/runner"
)

type venvPaths struct {
	python   string
	activate string
}

func paths(venvDir, goos string) venvPaths {
	if venvDir == "" {
		venvDir = ".venv"
	}
	if goos == "windows" {
		dir := strings.ReplaceAll(venvDir, "/", `\`)
		return venvPaths{
			python:   dir + `\Scripts\python.exe`,
			activate: dir + `\Scripts\activate`,
		}
	}
	dir := filepath.ToSlash(venvDir)
	return venvPaths{
		python:   dir + "/bin/python",
		activate: "source " + dir + "/bin/activate",
	}
}

// Plan returns the ordered setup steps for the target OS.
func Plan(cfg *config.Config, goos string) []runner.Step {
	p := paths(cfg.Setup.VenvDir, goos)
	venv := cfg.Setup.VenvDir
	if venv == "" {
		venv = ".venv"
	}

	// Nested rtbg runs must see the same config file as this one.
	nested := func(sub string) []string {
		args := []string{sub, "--python", p.python}
		if cfg.Path != "" {
			args = append(args, "--config", cfg.Path)
		}
		return args
	}

	steps := []runner.Step{
		{Description: "Creating virtual environment", Name: cfg.Python, Args: []string{"-m", "venv", venv}},
		{Description: "Upgrading pip", Name: p.python, Args: []string{"-m", "pip", "install", "--upgrade", "pip"}},
		{Description: "Installing dependencies", Name: p.python, Args: []string{"-m", "pip", "install", "-r", cfg.Setup.Requirements}},
		{Description: "Vendoring dependencies", Name: self(), Args: nested("vendor")},
		{Description: "Building package", Name: p.python, Args: []string{cfg.Setup.BuildScript}},
	}

	test := runner.Step{Description: "Running tests", Name: self(), Args: nested("smoke")}
	if fields := strings.Fields(cfg.Setup.TestScript); len(fields) > 0 {
		test.Name, test.Args = p.python, fields
	}
	return append(steps, test)
}

// self returns the path of the running rtbg binary so nested steps use the
// same build.
func self() string {
	if exe, err := os.Executable(); err == nil {
		return exe
	}
	return "rtbg"
}
