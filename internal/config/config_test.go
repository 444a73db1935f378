package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MIRADOR_RUL_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Server.Address != ":50061" {
		t.Fatalf("unexpected default address: %s", cfg.Server.Address)
	}
	if cfg.Cache.Enabled || cfg.Database.Enabled {
		t.Fatalf("cache and database should be disabled by default")
	}
	clock, err := cfg.Scoring.Clock()
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	if time.Since(clock()) > time.Minute {
		t.Fatalf("default clock should be wall-clock time")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(`server:
  address: ":6000"
logging:
  level: debug
data:
  trainingPath: /data/train.csv
scoring:
  referenceTime: "12/09/2018 00:00"
cache:
  enabled: true
  backend: memory
  tableTTL: 1h
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MIRADOR_RUL_OBSERVATIONS_PATH", "/data/obs.csv")
	t.Setenv("MIRADOR_RUL_LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":6000" || cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Fatalf("unexpected server/logging config: %+v %+v", cfg.Server, cfg.Logging)
	}
	if cfg.Data.TrainingPath != "/data/train.csv" || cfg.Data.ObservationsPath != "/data/obs.csv" {
		t.Fatalf("unexpected data config: %+v", cfg.Data)
	}
	if cfg.Cache.TableTTL != time.Hour || cfg.Cache.Backend != CacheBackendMemory {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}

	clock, err := cfg.Scoring.Clock()
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	want := time.Date(2018, 12, 9, 0, 0, 0, 0, time.UTC)
	if !clock().Equal(want) {
		t.Fatalf("expected fixed clock %v, got %v", want, clock())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad reference time", func(c *Config) { c.Scoring.ReferenceTime = "tomorrow" }},
		{"unknown backend", func(c *Config) { c.Cache.Enabled = true; c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Enabled = true; c.Cache.Backend = CacheBackendRedis }},
		{"database without dsn", func(c *Config) { c.Database.Enabled = true }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
