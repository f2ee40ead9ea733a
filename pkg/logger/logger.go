// Package logger builds the zerolog logger the identity service writes with.
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Settings is the subset of the service configuration logging depends on.
type Settings struct {
	Level   string
	Console bool
	Service string
}

// New returns a logger writing JSON lines to w, or coloured text when
// Console is set. An empty level means info; an unknown one is an error.
func New(w io.Writer, s Settings) (zerolog.Logger, error) {
	lvl, err := ParseLevel(s.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	if s.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if s.Service != "" {
		ctx = ctx.Str("service", s.Service)
	}
	return ctx.Logger(), nil
}

// ParseLevel accepts zerolog level names plus "warning".
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logger: unknown level %q", s)
	}
	return lvl, nil
}

// Component tags every entry of log with the emitting component.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
