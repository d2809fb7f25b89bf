// Package logger provides the process-wide structured logger used by every engine package.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

// Logger returns the shared logger, creating it on first use.
// Packages that want structured fields should derive a child with Logger().With(...).
//
// Returns:
//   - *log.Logger: the process-wide logger
func Logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "fragma",
			Level:           log.InfoLevel,
		})
	})
	return singleton
}

// SetLevel parses and applies a log level ("debug", "info", "warn", "error", "fatal").
// An unknown level returns an error and leaves the current level untouched.
//
// Parameters:
//   - level: the textual log level
//
// Returns:
//   - error: error if the level cannot be parsed
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Logger().SetLevel(lvl)
	return nil
}

// SetOutput redirects the shared logger, mainly so tests can capture output.
func SetOutput(w io.Writer) {
	Logger().SetOutput(w)
}

func Debugf(format string, args ...any) {
	l := Logger()
	l.Helper()
	l.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	l := Logger()
	l.Helper()
	l.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	l := Logger()
	l.Helper()
	l.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	l := Logger()
	l.Helper()
	l.Errorf(format, args...)
}

func Fatalf(format string, args ...any) {
	l := Logger()
	l.Helper()
	l.Fatalf(format, args...)
}
