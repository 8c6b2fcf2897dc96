package sbi

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
	"github.com/drcoopertbbt/BF3-5G-Demo/pkg/metrics"
)

const defaultRequestTimeout = 30 * time.Second

// RouterConfig carries the per-NF settings the shared router needs.
type RouterConfig struct {
	// NFType is the network function type reported on /health, for
	// example "AMF".
	NFType string

	// InstanceID is the NF instance UUID reported on /health.
	InstanceID string

	// RequestTimeout bounds handler execution. Zero means a sensible
	// default.
	RequestTimeout time.Duration

	// Metrics records SBI request counts and latencies. Nil disables
	// recording.
	Metrics metrics.SBIMetrics

	// HealthDetails optionally contributes NF-specific fields to the
	// /health payload, such as active session counts.
	HealthDetails func() map[string]any
}

// NewRouter creates the chi router every network function serves its SBI
// on.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe with NF identity
//   - GET /metrics - Prometheus metrics
//
// The register callback mounts the NF's own service routes.
func NewRouter(cfg RouterConfig, register func(r chi.Router)) http.Handler {
	r := chi.NewRouter()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(cfg.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	// Health and metrics - unauthenticated
	r.Get("/health", healthHandler(cfg))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	if register != nil {
		register(r)
	}

	return r
}

// healthHandler reports liveness plus the NF identity and any details the
// NF contributes.
func healthHandler(cfg RouterConfig) http.HandlerFunc {
	started := time.Now()

	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"status":       "healthy",
			"nfType":       cfg.NFType,
			"nfInstanceId": cfg.InstanceID,
			"uptime":       time.Since(started).Round(time.Second).String(),
		}

		if cfg.HealthDetails != nil {
			for k, v := range cfg.HealthDetails() {
				payload[k] = v
			}
		}

		WriteJSONOK(w, payload)
	}
}

// isQuietPath returns true for endpoints whose requests are logged at
// DEBUG to reduce noise from probes and scrapes.
func isQuietPath(path string) bool {
	return path == "/health" || path == "/metrics"
}

// routePattern returns the matched chi route pattern for metrics labels,
// falling back to the raw path when no route matched. Patterns keep label
// cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// requestLogger is a custom middleware that logs requests using the
// internal logger and feeds the SBI request metrics. A LogContext with
// the client IP and request id rides the request context so handler
// logs correlate with the access log.
//
// It logs:
//   - Request start (DEBUG level): method, path
//   - Request completion (INFO level): method, path, status, duration
//   - Health and metrics requests are logged at DEBUG level
func requestLogger(m metrics.SBIMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lc := logger.NewLogContext(clientIP(r.RemoteAddr))
			lc.RequestID = middleware.GetReqID(r.Context())
			ctx := logger.WithContext(r.Context(), lc)
			r = r.WithContext(ctx)

			logger.DebugCtx(ctx, "SBI request started",
				"method", r.Method,
				"path", r.URL.Path,
			)

			if m != nil {
				m.RecordRequestStart(r.Method, r.URL.Path)
			}

			// Wrap response writer to capture status code
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)

			if m != nil {
				m.RecordRequestEnd(r.Method, r.URL.Path)
				m.RecordRequest(r.Method, routePattern(r), ww.Status(), duration)
			}

			logArgs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", duration.String(),
			}

			if isQuietPath(r.URL.Path) {
				logger.DebugCtx(ctx, "SBI request completed", logArgs...)
			} else {
				logger.InfoCtx(ctx, "SBI request completed", logArgs...)
			}
		})
	}
}

// clientIP strips the port RealIP leaves on RemoteAddr.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
