// Package logging provides structured logging configuration using log/slog.
//
// Batch IDs are carried in the context so every log entry produced while a
// batch is loading can be correlated, in the console and in Seq.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	slogseq "github.com/sokkalf/slog-seq"

	"github.com/JonMunkholm/csvcore/internal/config"
)

// Setup configures the global slog logger and returns it together with a
// function that flushes and closes any remote sink.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// When SeqURL is set, records are also shipped to that Seq server.
func Setup(cfg config.LoggingConfig) (*slog.Logger, func()) {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var console slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		console = slog.NewJSONHandler(w, opts)
	} else {
		console = slog.NewTextHandler(w, opts)
	}

	handler, closeFn := console, func() {}
	if cfg.SeqURL != "" {
		_, seq := slogseq.NewLogger(
			cfg.SeqURL,
			slogseq.WithBatchSize(50),
			slogseq.WithFlushInterval(500*time.Millisecond),
			slogseq.WithHandlerOptions(opts),
		)
		if seq != nil {
			handler = &multiHandler{handlers: []slog.Handler{console, seq}}
			closeFn = func() { seq.Close() }
		}
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, closeFn
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type batchKey struct{}

// WithBatch returns a context carrying the batch ID.
func WithBatch(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchKey{}, batchID)
}

// BatchID returns the batch ID stored in ctx, if any.
func BatchID(ctx context.Context) string {
	id, _ := ctx.Value(batchKey{}).(string)
	return id
}

// FromContext returns the default logger enriched with the batch ID from
// ctx, so all entries for one batch share a batch_id attribute.
//
// Usage:
//
//	ctx = logging.WithBatch(ctx, batch.ID)
//	logger := logging.FromContext(ctx)
//	logger.Info("loading files", "count", len(paths))
func FromContext(ctx context.Context) *slog.Logger {
	return WithContext(ctx, slog.Default())
}

// WithContext enriches base with the batch ID from ctx.
func WithContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	if id := BatchID(ctx); id != "" {
		return base.With("batch_id", id)
	}
	return base
}

// WithFields returns a logger with additional structured fields.
//
// Usage:
//
//	fileLogger := logging.WithFields(ctx, "file", path)
//	fileLogger.Info("file loaded", "rows", n)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
