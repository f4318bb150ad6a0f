// Package logctx carries a *slog.Logger through a context.Context, the
// way the orchestrator/router/CLI thread logging attributes without
// passing a logger parameter down every call chain.
package logctx

import (
	"context"
	"io"
	"log/slog"
)

type loggerKey struct{}

var key loggerKey

// WithLogger stores a slog.Logger in the context.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, key, l)
}

// Logger retrieves a slog.Logger from context, falling back to slog.Default().
func Logger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if v := ctx.Value(key); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// WithSubmission returns a context whose logger carries submission_id,
// so every log line emitted while processing a submission is already
// scoped to it without each call site repeating the attribute.
func WithSubmission(ctx context.Context, submissionID string) context.Context {
	return WithLogger(ctx, Logger(ctx).With(slog.String("submission_id", submissionID)))
}

// Nop returns a logger that discards all output.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}
