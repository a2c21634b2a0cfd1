// Package logger provides the default logr.Logger used by the drive command
// and available to driver constructors.
package logger

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/iand/logfmtr"
)

var opts = logfmtr.Options{
	Writer:    os.Stderr,
	Colorize:  true,
	Humanize:  true,
	NameDelim: "/",
}
var defaultLogger = logfmtr.NewWithOptions(opts)

// DefaultLogger returns a logfmt logger writing to stderr.
func DefaultLogger() logr.Logger {
	return defaultLogger
}

// New returns a logfmt logger writing to w without color.
func New(w io.Writer) logr.Logger {
	return logfmtr.NewWithOptions(logfmtr.Options{
		Writer:    w,
		Humanize:  true,
		NameDelim: "/",
	})
}

// SetVerbosity sets the global verbosity for logfmtr loggers. Driver debug
// messages are logged at drive.LevelDebug.
func SetVerbosity(v int) {
	logfmtr.SetVerbosity(v)
}
