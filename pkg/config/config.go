package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/bitrate"
)

// Config represents the configuration of one network function process.
//
// Every binary shares this structure. The function type is compiled into
// the binary and seeds the defaults (listen port, registry behavior); the
// file and environment can override everything else.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (FIVEG_*)
//  2. Configuration file (YAML or TOML)
//  3. Per-function default values
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls Prometheus metrics collection on /metrics
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// NF identifies this function instance
	NF NFConfig `mapstructure:"nf" yaml:"nf"`

	// SBI configures the HTTP server and outbound client behavior
	SBI SBIConfig `mapstructure:"sbi" yaml:"sbi"`

	// NRF configures how this instance reaches the registry
	NRF NRFConfig `mapstructure:"nrf" yaml:"nrf"`

	// Auth configures access token issuance and enforcement
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	// PLMN is the serving network identity
	PLMN PLMNConfig `mapstructure:"plmn" yaml:"plmn"`

	// UserPlane configures address pools and forwarding behavior.
	// Only read by the user plane function.
	UserPlane UserPlaneConfig `mapstructure:"userplane" yaml:"userplane"`

	// RAN configures radio-side node identity and timers.
	// Only read by the gNB, CU, and DU.
	RAN RANConfig `mapstructure:"ran" yaml:"ran"`

	// Peers holds static fallback URLs used when registry discovery
	// returns nothing for a needed function type.
	Peers PeersConfig `mapstructure:"peers" yaml:"peers"`
}

// NFConfig identifies the running function instance.
type NFConfig struct {
	// Type is the function type. Set by the binary, not the file.
	// Valid values: NRF, AMF, SMF, UPF, AUSF, UDM, PCF, GNB, CU, DU
	Type string `mapstructure:"type" validate:"required,oneof=NRF AMF SMF UPF AUSF UDM PCF GNB CU DU" yaml:"type"`

	// InstanceID is the registry instance identifier.
	// Generated as a fresh UUID at startup when empty.
	InstanceID string `mapstructure:"instance_id" yaml:"instance_id,omitempty"`

	// Name is a human-readable instance name (e.g., "AMF-001")
	Name string `mapstructure:"name" yaml:"name,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, trace data is exported to an OTLP-compatible collector
// (e.g., Jaeger, Tempo, or any OTLP receiver).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	// Default: true (for local development)
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// 1.0 = sample all traces, 0.5 = sample 50%, 0.0 = no sampling
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false (opt-in for profiling)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040" (standard Pyroscope port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Valid values: cpu, alloc_objects, alloc_space, inuse_objects, inuse_space,
	//               goroutines, mutex_count, mutex_duration, block_count, block_duration
	// Default: ["cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"]
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures Prometheus metrics collection.
// Metrics are served on the function's own /metrics route, so there is no
// separate listener to configure.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true. Set to false for zero collection overhead.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`
}

// IsEnabled reports whether metrics collection is on, defaulting to true.
func (c MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// SBIConfig configures the HTTP server and outbound request behavior.
type SBIConfig struct {
	// Host is the listen address
	// Default: "127.0.0.1"
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the listen port. Defaults depend on the function type.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout bounds reading the request including the body.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing the response.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive connections.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// RequestTimeout is the per-request handler deadline.
	// Default: 30s
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	// ClientTimeout bounds outbound requests to peer functions.
	// Default: 5s
	ClientTimeout time.Duration `mapstructure:"client_timeout" yaml:"client_timeout"`
}

// NRFConfig configures how this instance reaches the registry.
type NRFConfig struct {
	// URL is the registry base URL
	// Default: "http://127.0.0.1:8000"
	URL string `mapstructure:"url" yaml:"url"`

	// HeartbeatInterval is how often the instance refreshes its
	// registration. Must stay below the registry's staleness threshold.
	// Default: 60s
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`

	// CacheTTL bounds how long discovery results are reused before a
	// fresh search.
	// Default: 30s
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// AuthConfig configures access token issuance and enforcement.
//
// The registry signs tokens with the shared secret; consumers present them
// on management and discovery routes.
type AuthConfig struct {
	// Enabled controls token enforcement.
	// Default: true.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`

	// Secret is the HS256 signing secret shared between the registry and
	// token validators.
	Secret string `mapstructure:"secret" yaml:"secret,omitempty"`

	// TokenTTL is the lifetime of issued tokens.
	// Default: 1h
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// IsEnabled reports whether token enforcement is on, defaulting to true.
func (c AuthConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// PLMNConfig is the serving network identity.
type PLMNConfig struct {
	// MCC is the mobile country code
	// Default: "001"
	MCC string `mapstructure:"mcc" validate:"omitempty,len=3,numeric" yaml:"mcc"`

	// MNC is the mobile network code
	// Default: "01"
	MNC string `mapstructure:"mnc" validate:"omitempty,min=2,max=3,numeric" yaml:"mnc"`
}

// UserPlaneConfig configures address pools and forwarding behavior.
type UserPlaneConfig struct {
	// NodeID is the user plane node identity reported in session responses
	// Default: "upf.mnc001.mcc001.3gppnetwork.org"
	NodeID string `mapstructure:"node_id" yaml:"node_id"`

	// IPv4Pool is the CIDR block UE addresses are leased from
	// Default: "192.168.100.0/24"
	IPv4Pool string `mapstructure:"ipv4_pool" validate:"omitempty,cidrv4" yaml:"ipv4_pool"`

	// IPv6Prefix is the block /64 prefixes are delegated from
	// Default: "2001:db8:5g::/48"
	IPv6Prefix string `mapstructure:"ipv6_prefix" validate:"omitempty,cidrv6" yaml:"ipv6_prefix"`

	// DefaultMBR is the rate applied when a session carries no QoS rule.
	// Supports human-readable rates: "100Mbps", "1Gbps"
	// Default: 100Mbps
	DefaultMBR bitrate.BitRate `mapstructure:"default_mbr" yaml:"default_mbr,omitempty"`

	// StatsInterval is how often traffic totals are logged
	// Default: 60s
	StatsInterval time.Duration `mapstructure:"stats_interval" yaml:"stats_interval"`

	// MonitorInterval is how often rate-limit drops are checked
	// Default: 30s
	MonitorInterval time.Duration `mapstructure:"monitor_interval" yaml:"monitor_interval"`

	// DrainInterval is how often queued packets are forwarded
	// Default: 100ms
	DrainInterval time.Duration `mapstructure:"drain_interval" yaml:"drain_interval"`

	// DropWarnThreshold is the per-window drop count that triggers a warning
	// Default: 100
	DropWarnThreshold int `mapstructure:"drop_warn_threshold" yaml:"drop_warn_threshold"`
}

// RANConfig configures radio-side node identity and timers.
type RANConfig struct {
	// GnbID is the node identifier announced during interface setup
	// Default: "000001"
	GnbID string `mapstructure:"gnb_id" yaml:"gnb_id"`

	// TAC is the tracking area code
	// Default: "000001"
	TAC string `mapstructure:"tac" yaml:"tac"`

	// NRCellID is the 36-bit cell identity as a bit string
	NRCellID string `mapstructure:"nr_cell_id" yaml:"nr_cell_id"`

	// HeartbeatInterval is how often the node announces itself upstream
	// Default: 60s
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval"`
}

// PeersConfig holds static fallback URLs for peer functions, used when
// registry discovery yields no instance of the needed type.
type PeersConfig struct {
	AMF  string `mapstructure:"amf" yaml:"amf,omitempty"`
	SMF  string `mapstructure:"smf" yaml:"smf,omitempty"`
	UPF  string `mapstructure:"upf" yaml:"upf,omitempty"`
	AUSF string `mapstructure:"ausf" yaml:"ausf,omitempty"`
	UDM  string `mapstructure:"udm" yaml:"udm,omitempty"`
	PCF  string `mapstructure:"pcf" yaml:"pcf,omitempty"`
	GNB  string `mapstructure:"gnb" yaml:"gnb,omitempty"`
	CU   string `mapstructure:"cu" yaml:"cu,omitempty"`
	DU   string `mapstructure:"du" yaml:"du,omitempty"`
}

// URLFor returns the static URL configured for the given function type,
// or "" when none is set.
func (p PeersConfig) URLFor(nfType string) string {
	switch strings.ToUpper(nfType) {
	case "AMF":
		return p.AMF
	case "SMF":
		return p.SMF
	case "UPF":
		return p.UPF
	case "AUSF":
		return p.AUSF
	case "UDM":
		return p.UDM
	case "PCF":
		return p.PCF
	case "GNB":
		return p.GNB
	case "CU":
		return p.CU
	case "DU":
		return p.DU
	}
	return ""
}

// Load loads configuration from file, environment, and defaults.
//
// The function type comes from the binary, seeds the per-function defaults,
// and cannot be overridden by file or environment.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (FIVEG_*)
//  2. Configuration file
//  3. Default values
func Load(configPath string, nfType string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists
	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	// If no config file was found, use defaults
	if !configFileFound {
		cfg := GetDefaultConfig(nfType)
		return cfg, nil
	}

	// Unmarshal into config struct with custom decode hooks
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The binary owns its function type
	cfg.NF.Type = nfType

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if an explicitly given config file exists and points the user
// at 5gctl config init when it does not.
func MustLoad(configPath string, nfType string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  5gctl config init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath, nfType)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use yaml.Marshal directly to respect yaml tags
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Restricted permissions: the file may carry the token signing secret.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use FIVEG_ prefix and underscores
	// Example: FIVEG_LOGGING_LEVEL=DEBUG, FIVEG_SBI_PORT=9001
	v.SetEnvPrefix("FIVEG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/fiveg/config.{yaml,toml}
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml") // Primary format
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		// Also check for os.PathError when explicit config file doesn't exist
		if os.IsNotExist(err) {
			return false, nil
		}
		// Other errors are problems
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
// This includes BitRate and time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		bitRateDecodeHook(),
		durationDecodeHook(),
	)
}

// bitRateDecodeHook returns a mapstructure decode hook that converts strings
// and integers to bitrate.BitRate. This enables config files to use
// human-readable rates like "100Mbps", "1Gbps", or plain bit-per-second
// numbers.
func bitRateDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to BitRate
		if to != reflect.TypeOf(bitrate.BitRate(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse human-readable string like "100Mbps", "1Gbps"
			return bitrate.ParseBitRate(v)
		case int:
			return bitrate.BitRate(v), nil
		case int64:
			return bitrate.BitRate(v), nil
		case uint64:
			return bitrate.BitRate(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bitrate.BitRate(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "30s", "5m", "1h"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fiveg")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "fiveg")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// config init command).
func GetConfigDir() string {
	return getConfigDir()
}
