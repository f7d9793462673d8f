// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/garyblankenship/cursorrules-game/config"
)

// Setup builds a logger from the configured environment and level and
// installs it as the slog default. Log lines go to stderr so they never
// interleave with game output on stdout.
func Setup(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}

	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// Discard returns a logger that drops everything. Hosts use it when the
// player asked for a clean transcript.
func Discard() *slog.Logger {
	// slog.DiscardHandler needs Go 1.24; on this toolchain, discard at the
	// writer and disable every level to match its contract.
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(math.MaxInt),
	}))
}
