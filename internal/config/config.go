package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/removethebg/rtbg/internal/cleancopy"
)

// Config represents the rtbg configuration
type Config struct {
	// Python interpreter used for installs, introspection and smoke tests
	Python string `json:"python" yaml:"python"`

	// Vendoring settings
	Vendor VendorConfig `json:"vendor" yaml:"vendor"`

	// Development environment bootstrap settings
	Setup SetupConfig `json:"setup" yaml:"setup"`

	// Smoke test settings
	Smoke SmokeConfig `json:"smoke" yaml:"smoke"`

	// Vendor service settings
	Server ServerConfig `json:"server" yaml:"server"`

	// Path is the file the config was loaded from; empty for defaults
	Path string `json:"-" yaml:"-"`
}

// VendorConfig contains vendoring settings
type VendorConfig struct {
	// Directory receiving one subtree per import name
	Dir string `json:"dir" yaml:"dir"`

	// Ordered dependency list
	Dependencies []DependencyConfig `json:"dependencies" yaml:"dependencies"`

	// Write vendor-manifest.yaml after a successful run
	Manifest bool `json:"manifest" yaml:"manifest"`
}

// DependencyConfig pairs an import name with its distribution package
type DependencyConfig struct {
	// Name used by `import` and as the vendor subdirectory
	ImportName string `json:"import_name" yaml:"import_name"`

	// Distribution name passed to pip
	Package string `json:"package" yaml:"package"`

	// Exclusion patterns applied while copying (empty = verbatim copy)
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// Also drop documentation trees and dot-files
	Heuristic bool `json:"heuristic,omitempty" yaml:"heuristic,omitempty"`
}

// SetupConfig contains bootstrap settings
type SetupConfig struct {
	// Minimum interpreter version, e.g. "3.9"
	MinPython string `json:"min_python" yaml:"min_python"`

	// Virtual environment directory
	VenvDir string `json:"venv_dir" yaml:"venv_dir"`

	// Requirements file installed into the environment
	Requirements string `json:"requirements" yaml:"requirements"`

	// Build script run after vendoring
	BuildScript string `json:"build_script" yaml:"build_script"`

	// Test command run last; empty runs `rtbg smoke` through the venv interpreter
	TestScript string `json:"test_script" yaml:"test_script"`
}

// SmokeConfig contains smoke test settings
type SmokeConfig struct {
	// Python package exposing remove_background and cli.process_folder
	Package string `json:"package" yaml:"package"`

	// Suffix appended to processed file names
	OutputSuffix string `json:"output_suffix" yaml:"output_suffix"`
}

// ServerConfig contains vendor service settings
type ServerConfig struct {
	// Listen address
	Addr string `json:"addr" yaml:"addr"`

	// Cron expression for periodic re-vendoring; empty disables it
	Schedule string `json:"schedule" yaml:"schedule"`
}

// importName is a top-level Python module name. It is spliced into
// interpreter scripts, so nothing else is accepted.
var importName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultDependencies returns the dependency list the package ships with.
func DefaultDependencies() []DependencyConfig {
	return []DependencyConfig{
		{ImportName: "rembg", Package: "rembg"},
		{ImportName: "PIL", Package: "Pillow"},
		{ImportName: "numpy", Package: "numpy", Exclude: append([]string(nil), cleancopy.NumpyPatterns...)},
		{ImportName: "onnxruntime", Package: "onnxruntime"},
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Python: "python",
		Vendor: VendorConfig{
			Dir:          filepath.Join("remove_the_bg", "vendor"),
			Dependencies: DefaultDependencies(),
			Manifest:     true,
		},
		Setup: SetupConfig{
			MinPython:    "3.9",
			VenvDir:      ".venv",
			Requirements: "requirements.txt",
			BuildScript:  "build.py",
		},
		Smoke: SmokeConfig{
			Package:      "remove_the_bg",
			OutputSuffix: "_no_bg",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Validate checks the configuration for values that would break a run
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Python) == "" {
		return fmt.Errorf("python interpreter must not be empty")
	}
	if strings.TrimSpace(c.Vendor.Dir) == "" {
		return fmt.Errorf("vendor.dir must not be empty")
	}
	if len(c.Vendor.Dependencies) == 0 {
		return fmt.Errorf("vendor.dependencies must list at least one dependency")
	}

	seen := make(map[string]bool)
	for i, dep := range c.Vendor.Dependencies {
		name := strings.TrimSpace(dep.ImportName)
		if name == "" {
			return fmt.Errorf("vendor.dependencies[%d]: import_name is required", i)
		}
		if !importName.MatchString(name) {
			return fmt.Errorf("vendor.dependencies[%d]: import_name %q is not a valid Python identifier", i, name)
		}
		if strings.TrimSpace(dep.Package) == "" {
			return fmt.Errorf("vendor.dependencies[%d]: package is required", i)
		}
		if seen[name] {
			return fmt.Errorf("vendor.dependencies[%d]: duplicate import_name %q", i, name)
		}
		seen[name] = true
		if err := cleancopy.ValidatePatterns(dep.Exclude); err != nil {
			return fmt.Errorf("vendor.dependencies[%d]: %w", i, err)
		}
	}
	return nil
}

// LoadConfig loads configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If no config file specified, try to find one
	if configPath == "" {
		configPath = findConfigFile()
	}

	// If still no config file, return default
	if configPath == "" {
		return config, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isJSON(configPath) {
		// encoding/json merges array elements into the existing slice, so a
		// file that lists dependencies must start from an empty list.
		var probe struct {
			Vendor struct {
				Dependencies json.RawMessage `json:"dependencies"`
			} `json:"vendor"`
		}
		if json.Unmarshal(data, &probe) == nil && len(probe.Vendor.Dependencies) > 0 {
			config.Vendor.Dependencies = nil
		}
		err = json.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	if abs, err := filepath.Abs(configPath); err == nil {
		configPath = abs
	}
	config.Path = configPath
	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(config, configPath)
	if err != nil {
		return err
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal encodes the config as JSON or YAML depending on the target file name
func Marshal(config *Config, configPath string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if isJSON(configPath) {
		data, err = json.MarshalIndent(config, "", "  ")
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	// Current directory
	candidates := []string{
		".rtbg.yaml",
		".rtbg.yml",
		".rtbg.json",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	// Home directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		for _, candidate := range candidates {
			p := filepath.Join(homeDir, candidate)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}

	return ""
}

// GetConfigPath returns the config file path to use
func GetConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	found := findConfigFile()
	if found != "" {
		return found
	}

	return ".rtbg.yaml"
}
