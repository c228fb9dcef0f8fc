// File: logging.go
// License: Apache-2.0

package rotor

import (
	"sync"

	"github.com/rs/zerolog"
)

var (
	loggerMu sync.RWMutex
	logger   = zerolog.Nop()
)

// SetLogger installs the logger used for diagnostic reporting: the
// Decompose warning for machines that exit with an error, and loop-level
// notices such as creator failures. Logging is disabled by default
// (zerolog.Nop); pass a nop logger to disable it again.
func SetLogger(l zerolog.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

func getLogger() zerolog.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	return l
}
