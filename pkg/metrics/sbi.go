package metrics

import (
	"time"
)

// SBIMetrics provides observability for service-based interface traffic,
// covering both the HTTP server side and outbound calls to peer functions.
//
// Implementations collect request counts, latency, in-flight gauges, and
// client-side outcomes. This interface is optional - pass nil to disable
// metrics collection with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	m := prometheus.NewSBIMetrics()
//	srv := sbi.NewServer(cfg, m)
//
//	// Without metrics (pass nil for zero overhead)
//	srv := sbi.NewServer(cfg, nil)
type SBIMetrics interface {
	// RecordRequest records a completed server-side request.
	//
	// Parameters:
	//   - method: HTTP method (e.g., "POST", "GET")
	//   - path: route pattern, not the raw URL (e.g., "/nnrf-disc/v1/nf-instances")
	//   - status: HTTP status code written to the client
	//   - duration: time taken to serve the request
	RecordRequest(method string, path string, status int, duration time.Duration)

	// RecordRequestStart increments the in-flight request gauge.
	RecordRequestStart(method string, path string)

	// RecordRequestEnd decrements the in-flight request gauge.
	RecordRequestEnd(method string, path string)

	// RecordClientRequest records a completed outbound request to a peer
	// function.
	//
	// Parameters:
	//   - targetNF: peer function type (e.g., "NRF", "UDM", "UPF")
	//   - method: HTTP method
	//   - status: HTTP status code returned by the peer, 0 on transport error
	//   - duration: round-trip time
	RecordClientRequest(targetNF string, method string, status int, duration time.Duration)

	// RecordClientError increments the transport-level failure counter for
	// a peer. Called when no HTTP response was received at all.
	RecordClientError(targetNF string, method string)
}
