// Package config loads engine configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vitwit/payflow/types"
)

type file struct {
	ReceivingAddress  string `yaml:"receiving_address"`
	SessionTTL        string `yaml:"session_ttl"`
	OracleTTL         string `yaml:"oracle_ttl"`
	MonitorInterval   string `yaml:"monitor_interval"`
	ConfirmingCeiling string `yaml:"confirming_ceiling"`
	LogLevel          string `yaml:"log_level"`
	EnableMetrics     bool   `yaml:"enable_metrics"`
}

// Load reads a YAML config file, applies environment overrides, and returns
// a normalized engine config. Environment variables win over file values:
// PAYFLOW_RECEIVING_ADDRESS, PAYFLOW_LOG_LEVEL, PAYFLOW_SESSION_TTL,
// PAYFLOW_ORACLE_TTL, PAYFLOW_MONITOR_INTERVAL, PAYFLOW_CONFIRMING_CEILING.
func Load(path string) (*types.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(&f)

	cfg := &types.Config{
		ReceivingAddress: f.ReceivingAddress,
		LogLevel:         f.LogLevel,
		EnableMetrics:    f.EnableMetrics,
	}

	if cfg.SessionTTL, err = parseDuration(f.SessionTTL, "session_ttl"); err != nil {
		return nil, err
	}
	if cfg.OracleTTL, err = parseDuration(f.OracleTTL, "oracle_ttl"); err != nil {
		return nil, err
	}
	if cfg.MonitorInterval, err = parseDuration(f.MonitorInterval, "monitor_interval"); err != nil {
		return nil, err
	}
	if cfg.ConfirmingCeiling, err = parseDuration(f.ConfirmingCeiling, "confirming_ceiling"); err != nil {
		return nil, err
	}

	if cfg.ReceivingAddress == "" {
		return nil, types.NewError(types.ErrConfig, "receiving_address is required")
	}

	cfg.Normalize()
	return cfg, nil
}

func applyEnvOverrides(f *file) {
	if v := os.Getenv("PAYFLOW_RECEIVING_ADDRESS"); v != "" {
		f.ReceivingAddress = v
	}
	if v := os.Getenv("PAYFLOW_LOG_LEVEL"); v != "" {
		f.LogLevel = v
	}
	if v := os.Getenv("PAYFLOW_SESSION_TTL"); v != "" {
		f.SessionTTL = v
	}
	if v := os.Getenv("PAYFLOW_ORACLE_TTL"); v != "" {
		f.OracleTTL = v
	}
	if v := os.Getenv("PAYFLOW_MONITOR_INTERVAL"); v != "" {
		f.MonitorInterval = v
	}
	if v := os.Getenv("PAYFLOW_CONFIRMING_CEILING"); v != "" {
		f.ConfirmingCeiling = v
	}
}

func parseDuration(value, field string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", field, err)
	}
	return d, nil
}
