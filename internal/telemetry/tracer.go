package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for MX protocol spans, following OpenTelemetry semantic
// convention style ("mx." namespace for protocol-specific fields).
const (
	AttrServerAddress = "mx.server_address"
	AttrRecord        = "mx.record"
	AttrField         = "mx.field"
	AttrOpcode        = "mx.opcode"
	AttrOperation     = "mx.operation"
	AttrMessageID     = "mx.message_id"
	AttrGeneration    = "mx.generation"
	AttrDataFormat    = "mx.data_format"
	AttrStatusCode    = "mx.status_code"
	AttrErrorKind     = "mx.error_kind"
	AttrCallbackID    = "mx.callback_id"
	AttrCallbackType  = "mx.callback_type"
)

// Span names for MX operations.
const (
	SpanRequest  = "mx.request"
	SpanConnect  = "mx.connect"
	SpanCallback = "mx.callback"
)

// ServerAddress returns an attribute for the MX server's host:port.
func ServerAddress(addr string) attribute.KeyValue {
	return attribute.String(AttrServerAddress, addr)
}

// Record returns an attribute for a record name.
func Record(name string) attribute.KeyValue {
	return attribute.String(AttrRecord, name)
}

// Field returns an attribute for a field name.
func Field(name string) attribute.KeyValue {
	return attribute.String(AttrField, name)
}

// Opcode returns an attribute for a wire opcode.
func Opcode(op uint32) attribute.KeyValue {
	return attribute.Int64(AttrOpcode, int64(op))
}

// Operation returns an attribute for a human-readable operation name.
func Operation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// MessageID returns an attribute for a request/reply message id.
func MessageID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrMessageID, int64(id))
}

// Generation returns an attribute for a connection generation.
func Generation(gen uint64) attribute.KeyValue {
	return attribute.Int64(AttrGeneration, int64(gen))
}

// DataFormat returns an attribute for a negotiated data format.
func DataFormat(format string) attribute.KeyValue {
	return attribute.String(AttrDataFormat, format)
}

// CallbackID returns an attribute for a server-assigned callback id.
func CallbackID(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrCallbackID, int64(id))
}

// CallbackType returns an attribute for a callback's trigger type.
func CallbackType(t string) attribute.KeyValue {
	return attribute.String(AttrCallbackType, t)
}

// StartRequestSpan starts a span for one RPC to an MX server.
func StartRequestSpan(ctx context.Context, address, recordField string, opcode uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{
		ServerAddress(address),
		Opcode(opcode),
	}, attrs...)
	return StartSpan(ctx, SpanRequest, trace.WithAttributes(allAttrs...))
}

// MXTracer adapts this package's OTel tracer to pkg/mxnet.Tracer, so a
// Server can be opened with ServerOptions.Tracer set to &MXTracer{}
// without pkg/mxnet importing OpenTelemetry directly.
type MXTracer struct{}

// StartRequest implements mxnet.Tracer.
func (MXTracer) StartRequest(ctx context.Context, address, recordField string, opcode uint32) func(err error) {
	_, span := StartRequestSpan(ctx, address, recordField, opcode, Record(recordField))
	start := time.Now()
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int64("mx.duration_ms", time.Since(start).Milliseconds()))
		span.End()
	}
}

// FieldHandle returns an attribute for a network field handle, formatted
// as hex for display.
func FieldHandle(h uint32) attribute.KeyValue {
	return attribute.String("mx.field_handle", fmt.Sprintf("%#x", h))
}
