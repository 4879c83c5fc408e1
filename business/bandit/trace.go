package bandit

import "context"

type ctxKey string

const TraceIDKey ctxKey = "trace_id"

// WithTraceID returns a child context carrying id. An empty id leaves ctx unchanged.
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, TraceIDKey, id)
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(TraceIDKey).(string); ok {
		return s
	}
	return ""
}
