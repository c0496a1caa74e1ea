package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Server & Connection
	// ========================================================================
	KeyServerAddress    = "server_address"    // host:port of the MX server
	KeyRecord           = "record"            // record name ("record.field" left half)
	KeyField            = "field"             // field name ("record.field" right half)
	KeyGeneration       = "generation"        // connection generation (bumped on reconnect)
	KeyStatus           = "status"            // Server.Status(): disconnected, connected, connection_lost, reconnected
	KeyReconnectAttempt = "reconnect_attempt" // reconnect attempt number

	// ========================================================================
	// RPC / Message
	// ========================================================================
	KeyOpcode       = "opcode"        // wire opcode (GET_ARRAY_BY_NAME, etc.)
	KeyOperation    = "operation"     // human-readable operation name
	KeyMessageID    = "message_id"    // request/reply message id
	KeyStatusCode   = "status_code"   // reply STATUS_CODE word
	KeyErrorKind    = "error_kind"    // decoded ErrorKind
	KeyDataFormat   = "data_format"   // negotiated data format: ascii, raw, xdr
	KeyUse64BitLong = "use_64bit_long"

	// ========================================================================
	// Field Handles & Values
	// ========================================================================
	KeyFieldHandle  = "field_handle"  // network field handle (opaque, generation-scoped)
	KeyRecordHandle = "record_handle" // network record handle
	KeyDatatype     = "datatype"      // wire.Datatype of a value
	KeyDimensions   = "dimensions"    // array shape

	// ========================================================================
	// Callbacks
	// ========================================================================
	KeyCallbackID   = "callback_id"
	KeyCallbackType = "callback_type"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts
)

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ----------------------------------------------------------------------------
// Server & Connection
// ----------------------------------------------------------------------------

// ServerAddress returns a slog.Attr for the MX server's host:port.
func ServerAddress(addr string) slog.Attr {
	return slog.String(KeyServerAddress, addr)
}

// Record returns a slog.Attr for a record name.
func Record(name string) slog.Attr {
	return slog.String(KeyRecord, name)
}

// Field returns a slog.Attr for a field name.
func Field(name string) slog.Attr {
	return slog.String(KeyField, name)
}

// Generation returns a slog.Attr for a connection generation counter.
func Generation(gen uint64) slog.Attr {
	return slog.Uint64(KeyGeneration, gen)
}

// Status returns a slog.Attr for connection status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// ReconnectAttempt returns a slog.Attr for the current reconnect attempt.
func ReconnectAttempt(n int) slog.Attr {
	return slog.Int(KeyReconnectAttempt, n)
}

// ----------------------------------------------------------------------------
// RPC / Message
// ----------------------------------------------------------------------------

// Opcode returns a slog.Attr for a wire opcode.
func Opcode(op uint32) slog.Attr {
	return slog.Any(KeyOpcode, op)
}

// Operation returns a slog.Attr for a human-readable operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// MessageID returns a slog.Attr for a request/reply message id.
func MessageID(id uint32) slog.Attr {
	return slog.Any(KeyMessageID, id)
}

// StatusCode returns a slog.Attr for a reply's STATUS_CODE word.
func StatusCode(code uint32) slog.Attr {
	return slog.Any(KeyStatusCode, code)
}

// ErrorKind returns a slog.Attr for a decoded error kind.
func ErrorKind(kind string) slog.Attr {
	return slog.String(KeyErrorKind, kind)
}

// DataFormat returns a slog.Attr for a negotiated data format.
func DataFormat(format string) slog.Attr {
	return slog.String(KeyDataFormat, format)
}

// Use64BitLong returns a slog.Attr for the 64-bit long negotiation flag.
func Use64BitLong(use64 bool) slog.Attr {
	return slog.Bool(KeyUse64BitLong, use64)
}

// ----------------------------------------------------------------------------
// Field Handles & Values
// ----------------------------------------------------------------------------

// FieldHandle returns a slog.Attr for a network field handle.
func FieldHandle(h uint32) slog.Attr {
	return slog.String(KeyFieldHandle, fmt.Sprintf("%#x", h))
}

// RecordHandle returns a slog.Attr for a network record handle.
func RecordHandle(h uint32) slog.Attr {
	return slog.String(KeyRecordHandle, fmt.Sprintf("%#x", h))
}

// Datatype returns a slog.Attr for a value's wire datatype.
func Datatype(dt int) slog.Attr {
	return slog.Int(KeyDatatype, dt)
}

// Dimensions returns a slog.Attr for an array's shape.
func Dimensions(dims []int) slog.Attr {
	return slog.Any(KeyDimensions, dims)
}

// ----------------------------------------------------------------------------
// Callbacks
// ----------------------------------------------------------------------------

// CallbackID returns a slog.Attr for a server-assigned callback id.
func CallbackID(id uint32) slog.Attr {
	return slog.Any(KeyCallbackID, id)
}

// CallbackType returns a slog.Attr for a callback's trigger type.
func CallbackType(t string) slog.Attr {
	return slog.String(KeyCallbackType, t)
}

// ----------------------------------------------------------------------------
// Operation Metadata
// ----------------------------------------------------------------------------

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}
