package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a console logger at the given level.
// Level precedence (highest to lowest):
//  1. explicit --log-level flag
//  2. -v/--verbose (debug) or -q/--quiet (warn)
//  3. LOG_LEVEL environment variable
//  4. info
func New(level string, verbose, quiet bool) zerolog.Logger {
	return NewWithOutput(os.Stderr, Level(level, verbose, quiet))
}

// NewWithOutput builds the logger against an arbitrary writer, for tests.
func NewWithOutput(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Level applies the precedence rules and falls back to info on anything
// unrecognized.
func Level(explicit string, verbose, quiet bool) zerolog.Level {
	if explicit == "" {
		switch {
		case verbose && quiet:
			explicit = "warn" // conflicting flags, quiet wins
		case verbose:
			explicit = "debug"
		case quiet:
			explicit = "warn"
		default:
			explicit = os.Getenv("LOG_LEVEL")
		}
	}
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
