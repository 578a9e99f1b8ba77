package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup initializes the global zerolog level and returns a logger writing
// to stderr, leaving stdout free for command output.
//   - level: trace, debug, info, warn, error, fatal, panic (default info)
//   - format: "json" for machine-readable output, "pretty" for a console
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return New(os.Stderr, lvl, format)
}

// New builds a logger on w without touching global state.
func New(w io.Writer, lvl zerolog.Level, format string) zerolog.Logger {
	var writer io.Writer = w
	if format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(writer).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "physiq").
		Logger()
}
