package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
)

// sbiMetrics is the Prometheus implementation of metrics.SBIMetrics.
type sbiMetrics struct {
	requestsTotal         *prometheus.CounterVec
	requestDuration       *prometheus.HistogramVec
	requestsInFlight      *prometheus.GaugeVec
	clientRequestsTotal   *prometheus.CounterVec
	clientRequestDuration *prometheus.HistogramVec
	clientErrorsTotal     *prometheus.CounterVec
}

// NewSBIMetrics creates a new Prometheus-backed SBIMetrics instance.
//
// When metrics are not enabled (InitRegistry not called) the returned
// value is a typed nil whose methods are all no-ops, so callers never
// need their own nil checks.
func NewSBIMetrics() metrics.SBIMetrics {
	if !metrics.IsEnabled() {
		return (*sbiMetrics)(nil)
	}

	reg := metrics.GetRegistry()

	return &sbiMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fiveg_sbi_requests_total",
				Help: "Total number of served SBI requests by method, route, and status",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fiveg_sbi_request_duration_milliseconds",
				Help: "Duration of served SBI requests in milliseconds",
				Buckets: []float64{
					1,    // 1ms - in-memory lookups
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms - single peer hop
					100,  // 100ms
					500,  // 500ms - multi-hop procedures
					1000, // 1s
					5000, // 5s - peer timeout territory
				},
			},
			[]string{"method", "path"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fiveg_sbi_requests_in_flight",
				Help: "Current number of SBI requests being served",
			},
			[]string{"method", "path"},
		),
		clientRequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fiveg_sbi_client_requests_total",
				Help: "Total number of outbound SBI requests by target function, method, and status",
			},
			[]string{"target_nf", "method", "status"},
		),
		clientRequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fiveg_sbi_client_request_duration_milliseconds",
				Help: "Round-trip time of outbound SBI requests in milliseconds",
				Buckets: []float64{
					1,    // 1ms
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms
					1000, // 1s
					5000, // 5s
				},
			},
			[]string{"target_nf"},
		),
		clientErrorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fiveg_sbi_client_errors_total",
				Help: "Total number of outbound SBI requests that failed before a response arrived",
			},
			[]string{"target_nf", "method"},
		),
	}
}

func (m *sbiMetrics) RecordRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds() * 1000)
}

func (m *sbiMetrics) RecordRequestStart(method string, path string) {
	if m == nil {
		return
	}
	m.requestsInFlight.WithLabelValues(method, path).Inc()
}

func (m *sbiMetrics) RecordRequestEnd(method string, path string) {
	if m == nil {
		return
	}
	m.requestsInFlight.WithLabelValues(method, path).Dec()
}

func (m *sbiMetrics) RecordClientRequest(targetNF string, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	m.clientRequestsTotal.WithLabelValues(targetNF, method, strconv.Itoa(status)).Inc()
	m.clientRequestDuration.WithLabelValues(targetNF).Observe(duration.Seconds() * 1000)
}

func (m *sbiMetrics) RecordClientError(targetNF string, method string) {
	if m == nil {
		return
	}
	m.clientErrorsTotal.WithLabelValues(targetNF, method).Inc()
}
