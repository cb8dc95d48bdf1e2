package slogx

import (
	"context"
	"log/slog"
)

// CategoryKey is the attribute the debug log view groups entries by.
const CategoryKey = "category"

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// Category returns the context logger tagged with a category.
func Category(ctx context.Context, category string) *slog.Logger {
	return FromContext(ctx).With(CategoryKey, category)
}

func WithRequestID(ctx context.Context, reqID string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("req_id", reqID))
}
