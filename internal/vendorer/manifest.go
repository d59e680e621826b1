package vendorer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestFile is written at the top of the vendor directory after each run.
const ManifestFile = "vendor-manifest.yaml"

// Manifest records what the last vendoring run put in the vendor directory.
type Manifest struct {
	RunID        string          `yaml:"run_id" json:"run_id"`
	VendoredAt   time.Time       `yaml:"vendored_at" json:"vendored_at"`
	TotalBytes   int64           `yaml:"total_bytes" json:"total_bytes"`
	Dependencies []ManifestEntry `yaml:"dependencies" json:"dependencies"`
}

// ManifestEntry describes one vendored subtree.
type ManifestEntry struct {
	ImportName string `yaml:"import_name" json:"import_name"`
	Package    string `yaml:"package" json:"package"`
	Files      int    `yaml:"files" json:"files"`
	Bytes      int64  `yaml:"bytes" json:"bytes"`
	Filtered   bool   `yaml:"filtered" json:"filtered"`
	Excluded   int    `yaml:"excluded,omitempty" json:"excluded,omitempty"`
}

// NewManifest builds the manifest for a completed report.
func NewManifest(r *Report) *Manifest {
	m := &Manifest{
		RunID:      r.RunID,
		VendoredAt: r.FinishedAt.UTC(),
		TotalBytes: r.TotalBytes,
	}
	for _, d := range r.Dependencies {
		m.Dependencies = append(m.Dependencies, ManifestEntry{
			ImportName: d.ImportName,
			Package:    d.Package,
			Files:      d.Files,
			Bytes:      d.Bytes,
			Filtered:   d.Filtered,
			Excluded:   d.Excluded,
		})
	}
	return m
}

// WriteManifest stores m in vendorDir.
func WriteManifest(vendorDir string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	path := filepath.Join(vendorDir, ManifestFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest from vendorDir. A missing manifest returns
// an error satisfying errors.Is(err, fs.ErrNotExist).
func ReadManifest(vendorDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(vendorDir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
