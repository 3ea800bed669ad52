// Package logging builds the zerolog logger used for installer diagnostics.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/conn-castle/core-installer/internal/messages"
)

// Options configures Setup.
type Options struct {
	// Verbosity is the -v count: 0 warn, 1 info, 2 debug, 3+ trace.
	Verbosity int
	// Stderr receives console output; nil uses os.Stderr.
	Stderr io.Writer
	// LogFile is appended to when set; empty disables file logging.
	LogFile string
	NoColor bool
}

// Level maps a -v count to a zerolog level.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Setup returns a logger writing to the console and, when possible, to the log file.
// The returned close function releases the log file. A log file that cannot be
// opened is reported through the logger and does not fail setup.
func Setup(opts Options) (zerolog.Logger, func() error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        stderr,
		TimeFormat: time.Kitchen,
		NoColor:    opts.NoColor,
	}}

	closeFn := func() error { return nil }
	var fileErr error
	if opts.LogFile != "" {
		file, err := openLogFile(opts.LogFile)
		if err != nil {
			fileErr = err
		} else {
			writers = append(writers, file)
			closeFn = file.Close
		}
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(Level(opts.Verbosity)).
		With().Timestamp().Logger()
	if opts.Verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}
	if fileErr != nil {
		logger.Warn().Err(fileErr).Str("path", opts.LogFile).Msg("failed to open log file, logging to console only")
	}
	logger.Debug().Int("verbosity", opts.Verbosity).Str("log_file", opts.LogFile).Msg("logger initialized")
	return logger, closeFn
}

// DefaultLogFile returns the log file location under the XDG state directory.
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, "coreinst", "coreinst.log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf(messages.LoggingCreateDirFmt, filepath.Dir(path), err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.LoggingOpenFileFmt, path, err)
	}
	return file, nil
}
