package avplay

import (
	"log"

	"github.com/erparts/avplay/internal/logging"
)

var pkgLogger Logger = log.Default()

type Logger interface {
	Printf(format string, v ...any)
}

// SetLogger replaces both the root package's logger and the one used by
// internal/'s debug-build-tagged diagnostics (internal/logging), so one
// call configures logging for the whole pipeline.
func SetLogger(logger Logger) {
	pkgLogger = logger
	logging.SetLogger(logger)
}
