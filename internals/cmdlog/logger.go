package cmdlog

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Options configure a new logger
type Options struct {
	// Verbose enables debug output
	Verbose bool
	// Output defaults to stderr
	Output io.Writer
}

// New returns a new structured logger
func New(opts Options) *log.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: opts.Verbose,
		Prefix:          "mclaunch",
	})
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Discard returns a logger that drops everything. Mostly useful in tests
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OrDefault returns l or the package default logger if l is nil
func OrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
