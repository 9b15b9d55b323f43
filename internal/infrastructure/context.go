package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	traceIDKey contextKey = iota
	runKey
)

// Run identifies the reconcile run a context belongs to. Loggers built by
// NewLogger add its fields to every record logged with that context.
type Run struct {
	Operation string
	Group     string
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// EnsureTraceID gives CLI runs, which have no request ID, a UUID v4 trace ID
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return WithTraceID(ctx, uuid.New().String())
	}
	return ctx
}

// WithRun scopes ctx to one merge, pivot or correlation run
func WithRun(ctx context.Context, run Run) context.Context {
	return context.WithValue(ctx, runKey, run)
}

// RunFromContext returns the run ctx is scoped to, if any
func RunFromContext(ctx context.Context) (Run, bool) {
	run, ok := ctx.Value(runKey).(Run)
	return run, ok
}
