package mxnet

import (
	"context"
	"time"
)

// Metrics is the observability hook a Server reports RPC outcomes
// through. Implementations live outside this package (see
// internal/telemetry for the Prometheus-backed one) so the core protocol
// package carries no metrics-library dependency of its own.
type Metrics interface {
	RequestCompleted(opcode uint32, duration time.Duration, err error)
	StaleReplyObserved()
	Reconnected()
	CallbacksActive(delta int)
}

// Tracer is the observability hook a Server reports RPC spans through.
type Tracer interface {
	// StartRequest begins a span for one RPC and returns a function to
	// call when the request completes.
	StartRequest(ctx context.Context, address, recordField string, opcode uint32) (end func(err error))
}

// noopMetrics and noopTracer satisfy Metrics/Tracer with no side effects,
// used when a Server is opened without observability configured.
type noopMetrics struct{}

func (noopMetrics) RequestCompleted(uint32, time.Duration, error) {}
func (noopMetrics) StaleReplyObserved()                           {}
func (noopMetrics) Reconnected()                                  {}
func (noopMetrics) CallbacksActive(int)                           {}

type noopTracer struct{}

func (noopTracer) StartRequest(_ context.Context, _, _ string, _ uint32) func(error) {
	return func(error) {}
}

func (s *Server) metricsOr() Metrics {
	if s.metrics != nil {
		return s.metrics
	}
	return noopMetrics{}
}

func (s *Server) tracerOr() Tracer {
	if s.tracer != nil {
		return s.tracer
	}
	return noopTracer{}
}
