// Package logging holds the package-wide zap logger and adapts zap loggers
// to the per-instance log callback handed to components.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/fmukit/internal/fmi"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the shared logger. It is a no-op logger until SetLogger is
// called.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger replaces the shared logger. Call it before creating instances.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Callback receives every message a component instance decides to emit.
type Callback func(instance string, status fmi.Status, category, message string)

// Discard drops every message.
func Discard(string, fmi.Status, string, string) {}

// Zap routes messages to l, choosing the level from the status.
func Zap(l *zap.Logger) Callback {
	return func(instance string, status fmi.Status, category, message string) {
		if ce := l.Check(Level(status), message); ce != nil {
			ce.Write(
				zap.String("instance", instance),
				zap.String("category", category),
				zap.Stringer("status", status),
			)
		}
	}
}

// Level maps a status to a zap level. Fatal maps to error so a component
// message never terminates the host process.
func Level(s fmi.Status) zapcore.Level {
	switch s {
	case fmi.OK, fmi.Pending:
		return zapcore.InfoLevel
	case fmi.Warning, fmi.Discard:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// New builds a logger writing to stderr. format is "console" or "json".
func New(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
