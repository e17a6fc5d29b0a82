// Package log provides categorized, file-backed logging for the TUI.
//
// Log output must never reach stdout/stderr while the Bubble Tea program owns
// the terminal, so the logger writes to a file and is a no-op until Init is
// called. Call sites pass a category first, then alternating key/value pairs:
//
//	log.Debug(log.CatStore, "UpdateField completed", "itemID", id, "duration", d)
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category labels a subsystem so log files can be grepped per concern.
type Category string

const (
	CatStore    Category = "store"
	CatAutosave Category = "autosave"
	CatWatcher  Category = "watcher"
	CatUI       Category = "ui"
	CatConfig   Category = "config"
)

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger
)

// Init opens the log file at path and enables logging at the given level
// ("debug", "info", "warn", "error"). An empty path leaves logging disabled.
func Init(path, level string) error {
	if path == "" {
		return nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
	return nil
}

// Close flushes any buffered entries and disables logging.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
}

// Debug logs a debug entry under the given category.
func Debug(cat Category, msg string, kv ...any) { write(zapcore.DebugLevel, cat, msg, kv...) }

// Info logs an info entry under the given category.
func Info(cat Category, msg string, kv ...any) { write(zapcore.InfoLevel, cat, msg, kv...) }

// Warn logs a warning entry under the given category.
func Warn(cat Category, msg string, kv ...any) { write(zapcore.WarnLevel, cat, msg, kv...) }

// Error logs an error entry under the given category.
func Error(cat Category, msg string, kv ...any) { write(zapcore.ErrorLevel, cat, msg, kv...) }

func write(lvl zapcore.Level, cat Category, msg string, kv ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		return
	}

	kv = append([]any{"cat", string(cat)}, kv...)
	switch lvl {
	case zapcore.DebugLevel:
		l.Debugw(msg, kv...)
	case zapcore.InfoLevel:
		l.Infow(msg, kv...)
	case zapcore.WarnLevel:
		l.Warnw(msg, kv...)
	default:
		l.Errorw(msg, kv...)
	}
}
