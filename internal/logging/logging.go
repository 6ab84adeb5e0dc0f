// Package logging provides scoped leveled loggers for the module.
package logging

import (
	"github.com/pion/logging"
)

var loggerFactory = logging.NewDefaultLoggerFactory()

// Logger is the leveled logger used across the module.
type Logger = logging.LeveledLogger

// NewLogger returns a leveled logger for the given scope, for example
// "camsession" or "camsession/v4l2cam".
func NewLogger(scope string) logging.LeveledLogger {
	return loggerFactory.NewLogger(scope)
}
