// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logger := logging.Setup(verbose)   // verbose selects DEBUG level
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures colored logging and returns the logger. The level comes
// from the LOG_LEVEL env var; verbose forces DEBUG regardless.
func Setup(verbose bool) *slog.Logger {
	level := levelFromEnv()
	if verbose {
		level = slog.LevelDebug
	}
	return SetupWithLevel(level)
}

// SetupWithLevel configures colored logging at the given level and installs
// the logger as the slog default.
func SetupWithLevel(level slog.Level) *slog.Logger {
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	)
	slog.SetDefault(logger)
	return logger
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
