// Package logging provides the shared structured logger for uctrace.
// The log level is taken from the UCTRACE_LOG_LEVEL environment variable.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a logger writing to the given writer, with the level
// taken from UCTRACE_LOG_LEVEL (debug, info, warn, error; default info).
func New(w io.Writer) *log.Logger {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "uctrace",
	})

	switch os.Getenv("UCTRACE_LOG_LEVEL") {
	case "debug":
		lg.SetLevel(log.DebugLevel)
	case "warn":
		lg.SetLevel(log.WarnLevel)
	case "error":
		lg.SetLevel(log.ErrorLevel)
	default:
		lg.SetLevel(log.InfoLevel)
	}

	return lg
}

var (
	std     *log.Logger
	stdOnce sync.Once
)

// Default returns the process-wide logger, writing to stderr.
func Default() *log.Logger {
	stdOnce.Do(func() {
		std = New(os.Stderr)
	})

	return std
}
