package cleancopy

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-enry/go-enry/v2"
)

// NumpyPatterns strips the build and source-tree markers that make numpy
// believe it is being imported from a source checkout.
var NumpyPatterns = []string{
	"setup.py",
	"setup.cfg",
	"pyproject.toml",
	"meson.build",
	"meson_options.txt",
	"_build_utils",
	"tools/swig",
	"tools/travis*",
	"tools/ci",
	"tools/build_utils",
	"numpy.egg-info",
	"__pycache__",
	"*.pyc",
	"*.pyo",
	"*.pyd",
	".git*",
	"doc/",
	"docs/",
	"benchmarks/",
	"branding/",
	"tools/numpy*",
}

// licenseFile keeps license texts even when the heuristic classifies them as
// documentation.
var licenseFile = regexp.MustCompile(`(?i)(^|/)(licen[cs]e|copying|notice)[^/]*$`)

type rule struct {
	raw      string
	glob     string
	dirOnly  bool
	anchored bool
}

// Filter decides which entries of a source tree are left out of a clean copy.
// The zero value excludes nothing.
type Filter struct {
	rules     []rule
	heuristic bool
}

// NewFilter compiles an ordered pattern set. Patterns are globs in which '*'
// and '?' stop at '/', '**' spans directories, a trailing '/' restricts the
// pattern to directories and a leading '/' matches only from the root.
func NewFilter(patterns []string, heuristic bool) (*Filter, error) {
	f := &Filter{heuristic: heuristic}
	for _, p := range patterns {
		r, err := parseRule(p)
		if err != nil {
			return nil, err
		}
		f.rules = append(f.rules, r)
	}
	return f, nil
}

// MustFilter is NewFilter for pattern sets known to be valid.
func MustFilter(patterns []string, heuristic bool) *Filter {
	f, err := NewFilter(patterns, heuristic)
	if err != nil {
		panic(err)
	}
	return f
}

func parseRule(p string) (rule, error) {
	r := rule{raw: p}
	g := strings.TrimSpace(p)
	if strings.HasSuffix(g, "/") {
		r.dirOnly = true
		g = strings.TrimRight(g, "/")
	}
	if strings.HasPrefix(g, "/") {
		r.anchored = true
		g = strings.TrimLeft(g, "/")
	}
	if g == "" {
		return r, fmt.Errorf("invalid exclude pattern %q: empty", p)
	}
	if !doublestar.ValidatePattern(g) {
		return r, fmt.Errorf("invalid exclude pattern %q", p)
	}
	r.glob = g
	return r, nil
}

// ValidatePatterns reports the first malformed pattern, if any.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := parseRule(p); err != nil {
			return err
		}
	}
	return nil
}

// Patterns returns the configured patterns in their original spelling.
func (f *Filter) Patterns() []string {
	out := make([]string, 0, len(f.rules))
	for _, r := range f.rules {
		out = append(out, r.raw)
	}
	return out
}

// Empty reports whether the filter would keep every entry.
func (f *Filter) Empty() bool {
	return f == nil || (len(f.rules) == 0 && !f.heuristic)
}

// Excluded reports whether the entry at rel (slash-separated, relative to the
// source root) is left out.
func (f *Filter) Excluded(rel string, isDir bool) bool {
	if f == nil {
		return false
	}
	rel = strings.TrimPrefix(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "./")
	if rel == "." || rel == "" {
		return false
	}
	base := path.Base(rel)

	for _, r := range f.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if match(r.glob, rel) {
			return true
		}
		if !r.anchored && match(r.glob, base) {
			return true
		}
	}

	if f.heuristic {
		return looksLikeCheckout(rel, isDir)
	}
	return false
}

func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// looksLikeCheckout flags documentation trees and dot-files, which an installed
// artifact never needs. License texts are kept.
func looksLikeCheckout(rel string, isDir bool) bool {
	if licenseFile.MatchString(rel) {
		return false
	}
	if enry.IsDotFile(rel) {
		return true
	}
	probe := rel
	if isDir {
		probe += "/"
	}
	return enry.IsDocumentation(probe)
}
