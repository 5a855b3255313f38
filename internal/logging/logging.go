// Package logging builds the logrus logger used by the ceprep commands.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Format selects the log output encoding.
type Format string

const (
	FormatText = Format("text")
	FormatJSON = Format("json")
)

// Options configures New.
type Options struct {
	// Level is a logrus level name, "info" when empty.
	Level   string
	Format  Format
	Verbose bool
	// Silent discards every log line and wins over Verbose.
	Silent bool
	Output io.Writer
}

// New creates a logger from opts.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("error parsing log level: %w", err)
		}
		level = parsed
	}

	if opts.Verbose {
		level = logrus.DebugLevel
	}

	if opts.Silent {
		logger.SetOutput(io.Discard)
		level = logrus.PanicLevel
	}

	logger.SetLevel(level)

	switch opts.Format {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	case FormatText, "":
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors:    !isTerminal(out),
			DisableTimestamp: true,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q, expected %q or %q", opts.Format, FormatText, FormatJSON)
	}

	return logger, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
