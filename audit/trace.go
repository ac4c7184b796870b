package audit

import "context"

type traceKey struct{}

// WithTraceID attaches the request trace ID to ctx so run records can be
// correlated with the request that ended the run.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// TraceIDFrom returns the trace ID stored by WithTraceID, or "".
func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
