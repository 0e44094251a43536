package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With binds a logger to the context; From on a context without one falls
// back to the process default.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
