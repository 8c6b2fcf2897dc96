package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for structural and cross-field errors.
//
// Struct tags cover per-field constraints (oneof, min/max, cidr). Checks
// that span fields, like telemetry needing an endpoint once enabled, live
// here because tags cannot express them.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry is enabled but no endpoint is configured")
	}

	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return fmt.Errorf("profiling is enabled but no endpoint is configured")
	}

	if cfg.Auth.IsEnabled() && cfg.Auth.Secret == "" {
		return fmt.Errorf("auth is enabled but no signing secret is configured")
	}

	if cfg.NRF.URL == "" {
		return fmt.Errorf("nrf url must not be empty")
	}

	return nil
}
