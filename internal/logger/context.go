package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for one RPC made
// against an MX server.
type LogContext struct {
	TraceID        string    // OpenTelemetry trace ID
	SpanID         string    // OpenTelemetry span ID
	ServerAddress  string    // host:port of the server handling the request
	Operation      string    // operation name (GetArray, PutArray, AddCallback, ...)
	Record         string    // record name
	Field          string    // field name
	Generation     uint64    // connection generation at request time
	ReconnectCount int       // number of reconnects observed so far
	StartTime      time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a request to the given
// server address.
func NewLogContext(serverAddress string) *LogContext {
	return &LogContext{
		ServerAddress: serverAddress,
		StartTime:     time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithOperation returns a copy with the operation name set
func (lc *LogContext) WithOperation(op string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Operation = op
	}
	return clone
}

// WithIdentifier returns a copy with the record/field identifier set
func (lc *LogContext) WithIdentifier(record, field string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Record = record
		clone.Field = field
	}
	return clone
}

// WithGeneration returns a copy with the connection generation set
func (lc *LogContext) WithGeneration(gen uint64) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Generation = gen
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
