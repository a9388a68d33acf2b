package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Output formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New creates a logger on stderr at the given level ("debug", "info", ...).
// format is "console" (human readable) or "json".
func New(level, format string) (zerolog.Logger, error) {
	return NewWithOutput(os.Stderr, level, format)
}

// NewWithOutput is New writing to w.
func NewWithOutput(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	switch strings.ToLower(format) {
	case "", FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q (want console or json)", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// NewWithWriter creates a debug-level JSON logger writing to w.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// ParseLevel parses a level name; empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	return lvl, nil
}

// WithContext stores the logger in ctx.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return log
	}
	return zerolog.Nop()
}
