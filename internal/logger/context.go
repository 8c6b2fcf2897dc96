package logger

import "context"

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped fields the Ctx logging functions
// prepend to every record.
type LogContext struct {
	TraceID   string // OpenTelemetry trace ID
	SpanID    string // OpenTelemetry span ID
	NFType    string // Network function handling the request
	Procedure string // Procedure name (REGISTRATION, 5G_AKA, PFCP_ESTABLISH, ...)
	Supi      string // Subscriber the request concerns, when known
	ClientIP  string // Client IP address (without port)
	RequestID string // Per-request correlation id
}

// WithContext returns a new context carrying the LogContext.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext, or nil if none is attached.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for one inbound request.
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{ClientIP: clientIP}
}
