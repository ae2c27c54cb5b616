package ztrace

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// pkgLogger is the package-level structured logger backing every "logged,
// not surfaced" disposition in spec.md §7: reporter failures, actor-loop
// recoveries before a supervisor restart, and registry-watchdog findings.
var pkgLogger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	pkgLogger.Store(&l)
}

// SetLogger redirects every package-level log statement to l.
func SetLogger(l zerolog.Logger) {
	pkgLogger.Store(&l)
}

func logger() *zerolog.Logger {
	return pkgLogger.Load()
}
