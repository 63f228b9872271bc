// Package logger: single place to initialize and fetch the process logger;
// level and output format come from environment variables.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Process-wide default, reused to keep output consistent across modules.
var defaultLogger *slog.Logger

// Setup: initialize the default logger.
// Output goes to stderr; file handles and external aggregation stay out of scope.
func Setup() *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L: fetch the default logger, falling back to Setup when uninitialized.
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
