package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide Prometheus registry and registers
// the standard Go runtime and process collectors.
//
// Must be called before constructing any metric set. Until it is called,
// IsEnabled returns false and all constructors return nil, which callers
// pass through for zero-overhead collection.
//
// Example usage:
//
//	metrics.InitRegistry()
//	sbiMetrics := prometheus.NewSBIMetrics()
//	srv := sbi.NewServer(cfg, sbiMetrics)
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	if registry != nil {
		return
	}

	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// GetRegistry returns the process-wide registry, or nil if InitRegistry
// has not been called.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// IsEnabled reports whether metrics collection is active.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format, for mounting at /metrics. Returns a 404 handler when
// metrics are disabled so the route can be mounted unconditionally.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
