package vendorer

import (
	"fmt"
	"regexp"

	"github.com/removethebg/rtbg/internal/cleancopy"
	"github.com/removethebg/rtbg/internal/config"
)

// Dependency pairs the name a package is imported by with the distribution
// name it is installed by. Exclude and Heuristic select a clean copy.
type Dependency struct {
	ImportName string
	Package    string
	Exclude    []string
	Heuristic  bool
}

// identifier matches a top-level Python module name.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate rejects import names that are not plain module identifiers. The
// name ends up inside an interpreter script and a vendor path.
func (d Dependency) Validate() error {
	if !identifier.MatchString(d.ImportName) {
		return fmt.Errorf("import name %q is not a valid Python identifier", d.ImportName)
	}
	if d.Package == "" {
		return fmt.Errorf("dependency %s has no package", d.ImportName)
	}
	return nil
}

// Filtered reports whether the dependency is copied through the clean-copy filter.
func (d Dependency) Filtered() bool {
	return len(d.Exclude) > 0 || d.Heuristic
}

// Filter compiles the dependency's exclusion patterns.
func (d Dependency) Filter() (*cleancopy.Filter, error) {
	return cleancopy.NewFilter(d.Exclude, d.Heuristic)
}

// FromConfig converts configured dependencies, copying pattern slices so later
// config edits cannot reach a running vendorer.
func FromConfig(deps []config.DependencyConfig) []Dependency {
	out := make([]Dependency, 0, len(deps))
	for _, d := range deps {
		out = append(out, Dependency{
			ImportName: d.ImportName,
			Package:    d.Package,
			Exclude:    append([]string(nil), d.Exclude...),
			Heuristic:  d.Heuristic,
		})
	}
	return out
}
