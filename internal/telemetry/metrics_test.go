package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_RequestCompleted(t *testing.T) {
	var m PrometheusMetrics

	before := testutil.ToFloat64(requestsTotal.WithLabelValues("1", "ok"))
	m.RequestCompleted(1, 5*time.Millisecond, nil)
	after := testutil.ToFloat64(requestsTotal.WithLabelValues("1", "ok"))
	assert.Equal(t, before+1, after)

	beforeErr := testutil.ToFloat64(requestsTotal.WithLabelValues("1", "error"))
	m.RequestCompleted(1, time.Millisecond, errors.New("timed out"))
	afterErr := testutil.ToFloat64(requestsTotal.WithLabelValues("1", "error"))
	assert.Equal(t, beforeErr+1, afterErr)
}

func TestPrometheusMetrics_StaleReplyObserved(t *testing.T) {
	var m PrometheusMetrics
	before := testutil.ToFloat64(staleRepliesTotal)
	m.StaleReplyObserved()
	require.Equal(t, before+1, testutil.ToFloat64(staleRepliesTotal))
}

func TestPrometheusMetrics_Reconnected(t *testing.T) {
	var m PrometheusMetrics
	before := testutil.ToFloat64(reconnectsTotal)
	m.Reconnected()
	require.Equal(t, before+1, testutil.ToFloat64(reconnectsTotal))
}

func TestPrometheusMetrics_CallbacksActive(t *testing.T) {
	var m PrometheusMetrics
	before := testutil.ToFloat64(callbacksActive)
	m.CallbacksActive(3)
	assert.Equal(t, before+3, testutil.ToFloat64(callbacksActive))
	m.CallbacksActive(-1)
	assert.Equal(t, before+2, testutil.ToFloat64(callbacksActive))
}
