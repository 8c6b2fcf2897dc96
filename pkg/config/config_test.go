package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/bitrate"
)

func TestLoad_DefaultsApplied(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath, "AMF")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.NF.Type != "AMF" {
		t.Errorf("Expected NF type AMF, got %q", cfg.NF.Type)
	}
	if cfg.SBI.Port != 9001 {
		t.Errorf("Expected AMF default port 9001, got %d", cfg.SBI.Port)
	}
	if cfg.NRF.URL != "http://127.0.0.1:8000" {
		t.Errorf("Expected default registry URL, got %q", cfg.NRF.URL)
	}
	if cfg.NF.InstanceID == "" {
		t.Error("Expected generated instance ID, got empty string")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows running a function without a config file for quick testing.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath, "SMF")
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}

	if cfg.SBI.Port != 9005 {
		t.Errorf("Expected SMF default port 9005, got %d", cfg.SBI.Port)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	// Write invalid YAML
	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Should return error
	_, err := Load(configPath, "AMF")
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_FileTypeCannotOverrideBinary(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
nf:
  type: "UPF"
  name: "renamed-instance"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath, "AMF")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// The binary owns its type; the file keeps its other fields
	if cfg.NF.Type != "AMF" {
		t.Errorf("Expected NF type AMF from binary, got %q", cfg.NF.Type)
	}
	if cfg.NF.Name != "renamed-instance" {
		t.Errorf("Expected name from file, got %q", cfg.NF.Name)
	}
}

func TestLoad_BitRateAndDurationHooks(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
shutdown_timeout: "15s"

userplane:
  default_mbr: "250Mbps"
  stats_interval: "2m"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath, "UPF")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("Expected shutdown_timeout 15s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.UserPlane.DefaultMBR != 250*bitrate.Mbps {
		t.Errorf("Expected default_mbr 250Mbps, got %v", cfg.UserPlane.DefaultMBR)
	}
	if cfg.UserPlane.StatsInterval != 2*time.Minute {
		t.Errorf("Expected stats_interval 2m, got %v", cfg.UserPlane.StatsInterval)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig("NRF")

	// Verify all defaults are set
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.SBI.Port != 8000 {
		t.Errorf("Expected NRF default port 8000, got %d", cfg.SBI.Port)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("Expected default token TTL 1h, got %v", cfg.Auth.TokenTTL)
	}
	if !cfg.Auth.IsEnabled() {
		t.Error("Expected auth enabled by default")
	}
	if !cfg.Metrics.IsEnabled() {
		t.Error("Expected metrics enabled by default")
	}
	if cfg.PLMN.MCC != "001" || cfg.PLMN.MNC != "01" {
		t.Errorf("Expected PLMN 001/01, got %s/%s", cfg.PLMN.MCC, cfg.PLMN.MNC)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	if filepath.Base(dir) != "fiveg" {
		t.Errorf("Expected directory name 'fiveg', got %q", filepath.Base(dir))
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// Set environment variables
	_ = os.Setenv("FIVEG_LOGGING_LEVEL", "ERROR")
	_ = os.Setenv("FIVEG_SBI_PORT", "19001")
	defer func() {
		_ = os.Unsetenv("FIVEG_LOGGING_LEVEL")
		_ = os.Unsetenv("FIVEG_SBI_PORT")
	}()

	// Create minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

sbi:
  port: 9001
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath, "AMF")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify environment variables override config file
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.SBI.Port != 19001 {
		t.Errorf("Expected port 19001 from env var, got %d", cfg.SBI.Port)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved", "config.yaml")

	cfg := GetDefaultConfig("PCF")
	cfg.Logging.Level = "DEBUG"

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := Load(configPath, "PCF")
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Logging.Level != "DEBUG" {
		t.Errorf("Expected level DEBUG after round trip, got %q", loaded.Logging.Level)
	}
	if loaded.SBI.Port != 9007 {
		t.Errorf("Expected PCF port 9007 after round trip, got %d", loaded.SBI.Port)
	}
}
