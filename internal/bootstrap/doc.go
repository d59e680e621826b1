// Package bootstrap sets up the remove-the-bg development environment: a
// virtual environment, its requirements, vendored dependencies, a package
// build and a smoke test run, executed as a fail-fast sequence.
package bootstrap
