// Package logging gives internal/ packages the same minimal logging seam
// the root avplay package exposes to callers (avplay.SetLogger), so debug
// build tags inside the pipeline can emit diagnostics without importing the
// root package (which would create an import cycle).
package logging

import "log"

// Logger is the same shape as avplay.Logger; avplay.SetLogger forwards to
// SetLogger so both seams always point at the same sink.
type Logger interface {
	Printf(format string, v ...any)
}

var pkgLogger Logger = log.Default()

// SetLogger replaces the package-level logger used by debug-build-tagged
// diagnostics throughout internal/.
func SetLogger(logger Logger) {
	pkgLogger = logger
}

// Default returns the currently installed logger.
func Default() Logger {
	return pkgLogger
}
