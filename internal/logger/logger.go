// Package logger wires the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	log  *slog.Logger
	once sync.Once
)

// Init configures the global structured logger. Output goes to stderr so
// stdio-mode protocol traffic on stdout stays clean.
func Init(level string) {
	once.Do(func() {
		log = newLogger(os.Stderr, level)
		slog.SetDefault(log)
	})
}

// L returns the global logger, initializing it at info level if needed.
func L() *slog.Logger {
	if log == nil {
		Init("info")
	}
	return log
}

// New builds a logger writing to w at the given level, for callers that need
// an isolated logger (tests, embedded use).
func New(w io.Writer, level string) *slog.Logger {
	return newLogger(w, level)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
