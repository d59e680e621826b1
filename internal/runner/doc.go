// Package runner executes external commands one step at a time and turns
// failures into Result values instead of errors. Sequencing and abort policy
// belong to the caller.
package runner
