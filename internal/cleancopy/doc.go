// Package cleancopy copies a directory tree while leaving out entries that
// match an exclusion pattern set.
//
// It exists for vendored Python packages whose installed tree still carries
// build scripts and metadata (setup.py, meson.build, egg-info). Shipped inside
// another package, those files make the library think it is running from a
// source checkout. A Filter may also apply a general heuristic that drops
// documentation trees and dot-files for dependencies without a curated list.
package cleancopy
