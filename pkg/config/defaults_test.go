package config

import (
	"testing"

	"github.com/propstore/propstore/pkg/api"
	"github.com/propstore/propstore/pkg/manager"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" || cfg.Logging.Format != "text" || cfg.Logging.Output != "stdout" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry must default to disabled")
	}
	if cfg.Telemetry.Endpoint != "localhost:4317" {
		t.Errorf("telemetry endpoint = %q", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("sample rate = %f", cfg.Telemetry.SampleRate)
	}
	if len(cfg.Telemetry.Profiling.ProfileTypes) == 0 {
		t.Error("profiling types default missing")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("metrics port = %d", cfg.Metrics.Port)
	}
	if cfg.API.Port != api.DefaultPort {
		t.Errorf("api port = %d", cfg.API.Port)
	}
	if cfg.Manager.TimeoutCheckPeriod != manager.DefaultTimeoutCheckPeriod {
		t.Errorf("timeout check period = %s", cfg.Manager.TimeoutCheckPeriod)
	}
	if cfg.Manager.MemoryCheckPeriod != manager.DefaultMemoryCheckPeriod {
		t.Errorf("memory check period = %s", cfg.Manager.MemoryCheckPeriod)
	}
	if len(cfg.Stores) != 0 {
		t.Errorf("default config must not declare stores")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestApplyDefaultsPreservesExplicit(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "error"
	cfg.Metrics.Port = 7777

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("explicit level lost: %q", cfg.Logging.Level)
	}
	if cfg.Metrics.Port != 7777 {
		t.Errorf("explicit port lost: %d", cfg.Metrics.Port)
	}
}
