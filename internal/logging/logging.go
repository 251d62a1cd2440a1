// Package logging builds the zerolog loggers used by the binaries.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel selects the log level: debug, info, warn or error.
const EnvLevel = "PLOT_DIGITIZER_LOG_LEVEL"

// New returns a human-readable logger writing to w at level. Stdout carries
// the MCP protocol, so binaries pass os.Stderr.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// FromEnv returns a stderr logger at the level named by EnvLevel.
func FromEnv() zerolog.Logger {
	return New(os.Stderr, ParseLevel(os.Getenv(EnvLevel)))
}

// ParseLevel maps a level name onto a zerolog level. Unknown and empty names
// select warn.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.WarnLevel
}
