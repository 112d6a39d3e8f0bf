// Package appctx plumbs a request-scoped zerolog.Logger and trace id through
// context.Context, the way every handler in this module expects to find
// them rather than threading a logger parameter through every call.
package appctx

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type traceKey struct{}

// WithLogger returns a context carrying l, retrievable with GetLogger.
func WithLogger(ctx context.Context, l *zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// GetLogger returns the logger stored in ctx, or a disabled logger if none
// was stored — callers never need a nil check.
func GetLogger(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithTrace returns a context carrying the given trace id.
func WithTrace(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// NewTrace returns a context carrying a freshly generated trace id.
func NewTrace(ctx context.Context) context.Context {
	return WithTrace(ctx, uuid.NewString())
}

// GetTrace returns the trace id stored in ctx, or "unknown" if none was set.
func GetTrace(ctx context.Context) string {
	if id, ok := ctx.Value(traceKey{}).(string); ok {
		return id
	}
	return "unknown"
}
