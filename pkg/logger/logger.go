// Package logger provides the structured logging conventions shared by the
// composition engine, source loaders, and cache backends.
package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ContextKey is the type for context keys owned by this package.
type ContextKey string

const (
	// ReloadIDKey is the context key carrying the current reload's
	// correlation id (see internal/composer).
	ReloadIDKey ContextKey = "reload_id"
)

// Config holds logger configuration, bound from the composer's own
// configuration rather than from the tree it manages.
type Config struct {
	Level      string
	Format     string
	Output     string
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// New creates a structured logger based on configuration.
func New(cfg Config) *slog.Logger {
	level := ParseLevel(cfg.Level)
	writer := SetupWriter(cfg)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler)
}

// ParseLevel parses a string log level to slog.Level, defaulting to info
// for anything unrecognized.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupWriter configures the output writer based on configuration.
func SetupWriter(cfg Config) io.Writer {
	switch strings.ToLower(cfg.Output) {
	case "file":
		if cfg.Filename == "" {
			return os.Stdout
		}
		return &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	case "stderr":
		return os.Stderr
	case "stdout", "":
		return os.Stdout
	default:
		return os.Stdout
	}
}

// GenerateReloadID generates a unique id used to correlate every log line
// and metric emitted during a single reload pass.
func GenerateReloadID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("reload_%d", time.Now().UnixNano())
	}
	return "reload_" + hex.EncodeToString(bytes)
}

// WithReloadID attaches a reload id to the context.
func WithReloadID(ctx context.Context, reloadID string) context.Context {
	return context.WithValue(ctx, ReloadIDKey, reloadID)
}

// ReloadIDFromContext extracts the reload id from the context, if any.
func ReloadIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ReloadIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns a logger pre-bound with the context's reload id, so
// every phase of one reload logs under the same correlation field.
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	if id := ReloadIDFromContext(ctx); id != "" {
		return base.With("reload_id", id)
	}
	return base
}
