// Package log provides the structured logger used across reencoder.
package log

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	current = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Config controls global logger construction.
type Config struct {
	Level   string // trace, debug, info, warn, error
	Service string
	Version string
	Pretty  bool
}

// Configure (re)builds the process-wide logger. Safe to call multiple
// times; later calls replace the current logger atomically.
func Configure(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var w = os.Stderr
	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	builder := logger.With()
	if cfg.Service != "" {
		builder = builder.Str("service", cfg.Service)
	}
	if cfg.Version != "" {
		builder = builder.Str("version", cfg.Version)
	}
	logger = builder.Logger()

	mu.Lock()
	current = logger
	mu.Unlock()
}

// L returns the current process-wide logger.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithComponent returns the process logger annotated with a component name.
func WithComponent(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}
