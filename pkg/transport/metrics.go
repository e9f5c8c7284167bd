package transport

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records per-exchange Prometheus metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	failuresTotal   *prometheus.CounterVec
}

// NewMetrics registers the transport metrics with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultkit_requests_total",
				Help: "Total number of HTTP exchanges that produced a response",
			},
			[]string{"method", "code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vaultkit_request_duration_seconds",
				Help:    "Duration of HTTP exchanges in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"method"},
		),
		failuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultkit_connection_failures_total",
				Help: "Total number of HTTP exchanges that failed without a response",
			},
			[]string{"method"},
		),
	}
}

// RecordResponse records an exchange that produced a status code.
func (m *Metrics) RecordResponse(method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordFailure records an exchange that failed before a response arrived.
func (m *Metrics) RecordFailure(method string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(method).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
