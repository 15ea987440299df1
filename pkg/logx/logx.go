package logx

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once       sync.Once
	baseLogger *slog.Logger
)

// Init initializes the global logger. Should be called early in main.
// Env vars:
//
//	LOG_LEVEL=debug|info|warn|error (default: info)
//	LOG_FORMAT=json|text (default: text)
//
// Logs go to stderr so stdout stays free for exported data.
func Init() {
	once.Do(func() {
		var lvl slog.Level
		switch os.Getenv("LOG_LEVEL") {
		case "debug":
			lvl = slog.LevelDebug
		case "warn":
			lvl = slog.LevelWarn
		case "error":
			lvl = slog.LevelError
		default:
			lvl = slog.LevelInfo
		}
		opts := &slog.HandlerOptions{Level: lvl}
		var handler slog.Handler
		if os.Getenv("LOG_FORMAT") == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		baseLogger = slog.New(handler).With("app", "host-checker")
		slog.SetDefault(baseLogger)
	})
}

// L returns the initialized base logger (initializing if necessary).
func L() *slog.Logger {
	if baseLogger == nil {
		Init()
	}
	return baseLogger
}
