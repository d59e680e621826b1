// Package smoketest checks that the packaged background-removal library works
// once its dependencies are vendored: single-image removal, folder processing,
// and the error kinds for missing and non-image inputs.
package smoketest
