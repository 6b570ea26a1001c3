// Package logging builds the slog loggers used by the polyroot binaries.
//
// The root package never writes logs on its own; it accepts a *slog.Logger
// through polyroot.WithLogger. This package turns the logging section of the
// config into such a logger:
//
//	logger := logging.New(logging.Config{Level: "debug", Format: "text"}, os.Stderr)
//	roots, err := polyroot.FindAllRoots(coeffs, polyroot.WithLogger(logger))
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Config selects the minimum level and the output format.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Format is json or text. Empty means json.
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`

	// Service is attached to every entry as the "service" attribute.
	Service string `yaml:"service"`
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a logger writing to w. An unknown level falls back to info.
func New(cfg Config, w io.Writer) *slog.Logger {
	level, _ := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(h)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return logger
}
