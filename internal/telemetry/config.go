package telemetry

// Config selects the trace exporter and sampling for one network
// function process.
type Config struct {
	Enabled bool

	// ServiceName appears as service.name on every exported span,
	// typically the NF name ("amf", "smf", ...).
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP/gRPC collector address, host:port.
	Endpoint string
	Insecure bool

	// SampleRate is the head-sampling ratio in [0, 1].
	SampleRate float64
}

// DefaultConfig keeps tracing off and points at a local collector, so
// enabling it in config is a one-line change.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "5g-nf",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
