package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	for _, nfType := range []string{"NRF", "AMF", "SMF", "UPF", "AUSF", "UDM", "PCF", "GNB", "CU", "DU"} {
		cfg := GetDefaultConfig(nfType)

		if err := Validate(cfg); err != nil {
			t.Errorf("Expected valid %s config to pass validation, got error: %v", nfType, err)
		}
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig("AMF")
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig("AMF")
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidNFType(t *testing.T) {
	cfg := GetDefaultConfig("AMF")
	cfg.NF.Type = "HSS"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unknown function type")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := GetDefaultConfig("AMF")
	cfg.SBI.Port = 70000 // Out of range

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_InvalidIPv4Pool(t *testing.T) {
	cfg := GetDefaultConfig("UPF")
	cfg.UserPlane.IPv4Pool = "not-a-cidr"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for malformed pool CIDR")
	}
}

func TestValidate_InvalidPLMN(t *testing.T) {
	cfg := GetDefaultConfig("AMF")
	cfg.PLMN.MCC = "1"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for short MCC")
	}
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := GetDefaultConfig("AMF")
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for telemetry enabled without endpoint")
	}
	if !strings.Contains(err.Error(), "telemetry") && !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("Expected error about telemetry endpoint, got: %v", err)
	}
}

func TestValidate_TelemetrySampleRate(t *testing.T) {
	cfg := GetDefaultConfig("AMF")
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = "localhost:4317"
	cfg.Telemetry.SampleRate = 1.5 // Out of range (should be 0.0-1.0)

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for sample rate out of range")
	}
}

func TestValidate_AuthEnabledWithoutSecret(t *testing.T) {
	cfg := GetDefaultConfig("NRF")
	cfg.Auth.Secret = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for auth enabled without secret")
	}
	if !strings.Contains(err.Error(), "secret") {
		t.Errorf("Expected error about signing secret, got: %v", err)
	}
}

func TestValidate_AuthDisabledAllowsEmptySecret(t *testing.T) {
	cfg := GetDefaultConfig("NRF")
	disabled := false
	cfg.Auth.Enabled = &disabled
	cfg.Auth.Secret = ""

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected no error with auth disabled, got: %v", err)
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	// Validation accepts both uppercase and lowercase log levels
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultConfig("AMF")
		cfg.Logging.Level = level

		err := Validate(cfg)
		if err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}

		// Validation should NOT normalize - level should remain as-is
		if cfg.Logging.Level != level {
			t.Errorf("Expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}
}
