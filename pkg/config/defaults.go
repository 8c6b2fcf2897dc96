package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/bitrate"
)

// defaultPorts maps each function type to its conventional listen port.
var defaultPorts = map[string]int{
	"NRF":  8000,
	"AMF":  9001,
	"UPF":  9002,
	"AUSF": 9003,
	"UDM":  9004,
	"SMF":  9005,
	"PCF":  9007,
	"GNB":  38412,
	"CU":   38472,
	"DU":   38473,
}

// DefaultPort returns the conventional listen port for a function type,
// or 0 for an unknown type.
func DefaultPort(nfType string) int {
	return defaultPorts[strings.ToUpper(nfType)]
}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and
// environment variables to fill in any missing values. The function type in
// cfg.NF.Type must already be set because listen port and peer defaults
// depend on it.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyNFDefaults(&cfg.NF)
	applySBIDefaults(&cfg.SBI, cfg.NF.Type)
	applyNRFDefaults(&cfg.NRF)
	applyAuthDefaults(&cfg.Auth)
	applyPLMNDefaults(&cfg.PLMN)
	applyUserPlaneDefaults(&cfg.UserPlane, &cfg.PLMN)
	applyRANDefaults(&cfg.RAN)
	applyPeersDefaults(&cfg.Peers)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Enabled defaults to false (opt-in for telemetry)

	// Default endpoint is localhost:4317 (standard OTLP gRPC port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	// Default sample rate is 1.0 (sample all traces)
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	// Enabled defaults to false (opt-in for profiling)

	// Default endpoint is localhost:4040 (standard Pyroscope port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	// Default profile types include CPU, memory allocation, and goroutines
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyNFDefaults fills instance identity.
func applyNFDefaults(cfg *NFConfig) {
	cfg.Type = strings.ToUpper(cfg.Type)

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.Name == "" && cfg.Type != "" {
		cfg.Name = fmt.Sprintf("%s-001", cfg.Type)
	}
}

// applySBIDefaults sets server and client defaults. The listen port depends
// on the function type.
func applySBIDefaults(cfg *SBIConfig, nfType string) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort(nfType)
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ClientTimeout == 0 {
		cfg.ClientTimeout = 5 * time.Second
	}
}

// applyNRFDefaults sets registry client defaults.
func applyNRFDefaults(cfg *NRFConfig) {
	if cfg.URL == "" {
		cfg.URL = "http://127.0.0.1:8000"
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 60 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
}

// applyAuthDefaults sets token defaults.
//
// The development secret keeps a multi-process bring-up working out of the
// box. Production deployments set FIVEG_AUTH_SECRET.
func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.Secret == "" {
		cfg.Secret = "change-me-shared-registry-secret"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = time.Hour
	}
}

// applyPLMNDefaults sets the serving network identity defaults.
func applyPLMNDefaults(cfg *PLMNConfig) {
	if cfg.MCC == "" {
		cfg.MCC = "001"
	}
	if cfg.MNC == "" {
		cfg.MNC = "01"
	}
}

// applyUserPlaneDefaults sets pool and forwarding defaults.
func applyUserPlaneDefaults(cfg *UserPlaneConfig, plmn *PLMNConfig) {
	if cfg.NodeID == "" {
		mnc := plmn.MNC
		if len(mnc) == 2 {
			mnc = "0" + mnc
		}
		cfg.NodeID = fmt.Sprintf("upf.mnc%s.mcc%s.3gppnetwork.org", mnc, plmn.MCC)
	}
	if cfg.IPv4Pool == "" {
		cfg.IPv4Pool = "192.168.100.0/24"
	}
	if cfg.IPv6Prefix == "" {
		cfg.IPv6Prefix = "2001:db8:5::/48"
	}
	if cfg.DefaultMBR == 0 {
		cfg.DefaultMBR = 100 * bitrate.Mbps
	}
	if cfg.StatsInterval == 0 {
		cfg.StatsInterval = 60 * time.Second
	}
	if cfg.MonitorInterval == 0 {
		cfg.MonitorInterval = 30 * time.Second
	}
	if cfg.DrainInterval == 0 {
		cfg.DrainInterval = 100 * time.Millisecond
	}
	if cfg.DropWarnThreshold == 0 {
		cfg.DropWarnThreshold = 100
	}
}

// applyRANDefaults sets radio node identity defaults.
func applyRANDefaults(cfg *RANConfig) {
	if cfg.GnbID == "" {
		cfg.GnbID = "000001"
	}
	if cfg.TAC == "" {
		cfg.TAC = "000001"
	}
	if cfg.NRCellID == "" {
		cfg.NRCellID = strings.Repeat("0", 28) + "00000001"
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = 60 * time.Second
	}
}

// applyPeersDefaults fills the static fallback URLs from the port table.
func applyPeersDefaults(cfg *PeersConfig) {
	fill := func(field *string, nfType string) {
		if *field == "" {
			*field = fmt.Sprintf("http://127.0.0.1:%d", DefaultPort(nfType))
		}
	}

	fill(&cfg.AMF, "AMF")
	fill(&cfg.SMF, "SMF")
	fill(&cfg.UPF, "UPF")
	fill(&cfg.AUSF, "AUSF")
	fill(&cfg.UDM, "UDM")
	fill(&cfg.PCF, "PCF")
	fill(&cfg.GNB, "GNB")
	fill(&cfg.CU, "CU")
	fill(&cfg.DU, "DU")
}

// GetDefaultConfig returns a Config struct for a function type with all
// default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Running without a config file
func GetDefaultConfig(nfType string) *Config {
	cfg := &Config{
		NF: NFConfig{
			Type: strings.ToUpper(nfType),
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
