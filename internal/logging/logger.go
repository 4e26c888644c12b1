// Package logging configures the zerolog logger shared by every command.
//
// Log output always goes to stderr (or the configured writer) so that table
// and JSON output on stdout stay clean for piping.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration
type Config struct {
	Level  string    // debug, info, warn, error
	Format string    // console or json
	Output io.Writer // defaults to os.Stderr
}

// New builds a logger from the configuration
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(out),
		}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().Timestamp().
		Logger()
}

// ParseLevel converts a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
