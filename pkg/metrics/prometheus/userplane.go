package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
)

// userPlaneMetrics is the Prometheus implementation of metrics.UserPlaneMetrics.
type userPlaneMetrics struct {
	packetsTotal       *prometheus.CounterVec
	bytesTotal         *prometheus.CounterVec
	packetSize         *prometheus.HistogramVec
	activeTunnels      prometheus.Gauge
	activeSessions     prometheus.Gauge
	allocatedAddresses prometheus.Gauge
	sessionMessages    *prometheus.CounterVec
}

// NewUserPlaneMetrics creates a new Prometheus-backed UserPlaneMetrics
// instance.
//
// When metrics are not enabled (InitRegistry not called) the returned
// value is a typed nil whose methods are all no-ops, so callers never
// need their own nil checks.
func NewUserPlaneMetrics() metrics.UserPlaneMetrics {
	if !metrics.IsEnabled() {
		return (*userPlaneMetrics)(nil)
	}

	reg := metrics.GetRegistry()

	return &userPlaneMetrics{
		packetsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fiveg_userplane_packets_total",
				Help: "Total number of processed packets by direction and status",
			},
			[]string{"direction", "status"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fiveg_userplane_bytes_total",
				Help: "Total bytes carried by forwarded packets by direction",
			},
			[]string{"direction"},
		),
		packetSize: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fiveg_userplane_packet_bytes",
				Help: "Distribution of processed packet sizes in bytes",
				Buckets: []float64{
					64,    // control traffic
					256,   // small payloads
					576,   // minimum reassembly size
					1000,  // typical emulated payload
					1500,  // ethernet MTU
					9000,  // jumbo frames
					65536, // maximum datagram
				},
			},
			[]string{"direction"},
		),
		activeTunnels: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "fiveg_userplane_active_tunnels",
				Help: "Current number of established tunnels",
			},
		),
		activeSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "fiveg_userplane_active_sessions",
				Help: "Current number of established forwarding sessions",
			},
		),
		allocatedAddresses: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "fiveg_userplane_allocated_addresses",
				Help: "Current number of UE addresses leased from the pool",
			},
		),
		sessionMessages: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fiveg_pfcp_messages_total",
				Help: "Total number of session-management messages by type and response cause",
			},
			[]string{"message_type", "cause"},
		),
	}
}

func (m *userPlaneMetrics) RecordPacket(direction string, status string, bytes int) {
	if m == nil {
		return
	}

	m.packetsTotal.WithLabelValues(direction, status).Inc()
	m.packetSize.WithLabelValues(direction).Observe(float64(bytes))

	if status == "forwarded" && bytes > 0 {
		m.bytesTotal.WithLabelValues(direction).Add(float64(bytes))
	}
}

func (m *userPlaneMetrics) SetActiveTunnels(count int) {
	if m == nil {
		return
	}
	m.activeTunnels.Set(float64(count))
}

func (m *userPlaneMetrics) SetActiveSessions(count int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(count))
}

func (m *userPlaneMetrics) SetAllocatedAddresses(count int) {
	if m == nil {
		return
	}
	m.allocatedAddresses.Set(float64(count))
}

func (m *userPlaneMetrics) RecordSessionMessage(messageType int, cause int) {
	if m == nil {
		return
	}
	m.sessionMessages.WithLabelValues(strconv.Itoa(messageType), strconv.Itoa(cause)).Inc()
}
