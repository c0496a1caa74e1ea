package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics adapts this package's Prometheus collectors to
// pkg/mxnet.Metrics, so a Server can be opened with
// ServerOptions.Metrics set to &PrometheusMetrics{} without pkg/mxnet
// importing the Prometheus client directly.
type PrometheusMetrics struct{}

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mxnet_requests_total",
		Help: "Total RPCs completed, labeled by opcode and outcome.",
	}, []string{"op", "outcome"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mxnet_request_duration_seconds",
		Help:    "RPC duration in seconds, labeled by opcode.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	staleRepliesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mxnet_stale_replies_total",
		Help: "Replies discarded because their message id did not match an in-flight request.",
	})

	reconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mxnet_reconnects_total",
		Help: "Successful reconnects across all Servers.",
	})

	callbacksActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mxnet_callbacks_active",
		Help: "Callbacks currently registered across all Servers.",
	})
)

func init() {
	prometheus.MustRegister(
		requestsTotal,
		requestDuration,
		staleRepliesTotal,
		reconnectsTotal,
		callbacksActive,
	)
}

// RequestCompleted implements mxnet.Metrics.
func (PrometheusMetrics) RequestCompleted(opcode uint32, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	op := strconv.FormatUint(uint64(opcode), 10)
	requestsTotal.WithLabelValues(op, outcome).Inc()
	requestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// StaleReplyObserved implements mxnet.Metrics.
func (PrometheusMetrics) StaleReplyObserved() {
	staleRepliesTotal.Inc()
}

// Reconnected implements mxnet.Metrics.
func (PrometheusMetrics) Reconnected() {
	reconnectsTotal.Inc()
}

// CallbacksActive implements mxnet.Metrics.
func (PrometheusMetrics) CallbacksActive(delta int) {
	callbacksActive.Add(float64(delta))
}
