package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-rul/internal/utils"
)

// Cache backends accepted by CacheConfig.Backend.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// Config captures the settings required to train, score and serve.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Data     DataConfig     `yaml:"data"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Report   ReportConfig   `yaml:"report"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig controls gRPC listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DataConfig locates the maintenance exports.
type DataConfig struct {
	TrainingPath     string `yaml:"trainingPath"`
	ObservationsPath string `yaml:"observationsPath"`
}

// ScoringConfig controls the scoring clock. An empty ReferenceTime means wall-clock time.
type ScoringConfig struct {
	ReferenceTime string `yaml:"referenceTime"`
}

// ReportConfig controls batch report outputs. An empty PlotPath skips the plot.
type ReportConfig struct {
	OutputPath string `yaml:"outputPath"`
	PlotPath   string `yaml:"plotPath"`
}

// CacheConfig controls caching of parameter table snapshots.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Backend      string        `yaml:"backend"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	TableTTL     time.Duration `yaml:"tableTTL"`
}

// DatabaseConfig controls MySQL persistence of ranked reports.
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("MIRADOR_RUL_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would only fail later at scoring time.
func (c *Config) Validate() error {
	if _, err := c.Scoring.Reference(); err != nil {
		return err
	}
	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case CacheBackendMemory:
		case CacheBackendRedis:
			if c.Cache.Addr == "" {
				return fmt.Errorf("cache.addr is required for the redis backend")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
		}
	}
	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when the database is enabled")
	}
	return nil
}

// Reference returns the fixed scoring time, or the zero time when none is configured.
func (s ScoringConfig) Reference() (time.Time, error) {
	if strings.TrimSpace(s.ReferenceTime) == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseTimestamp(s.ReferenceTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("scoring.referenceTime: %w", err)
	}
	return t, nil
}

// Clock returns the scoring time source: the fixed reference when configured, otherwise
// time.Now.
func (s ScoringConfig) Clock() (func() time.Time, error) {
	ref, err := s.Reference()
	if err != nil {
		return nil, err
	}
	if ref.IsZero() {
		return time.Now, nil
	}
	return func() time.Time { return ref }, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":50061",
			MetricsAddress:  ":2113",
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Data: DataConfig{
			TrainingPath:     "data/Training_Data.csv",
			ObservationsPath: "data/Test_Data.csv",
		},
		Report: ReportConfig{OutputPath: "rul_output.txt"},
		Cache: CacheConfig{
			Enabled:      false,
			Backend:      CacheBackendRedis,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			MaxRetries:   2,
			TableTTL:     24 * time.Hour,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIRADOR_RUL_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("MIRADOR_RUL_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("MIRADOR_RUL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MIRADOR_RUL_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("MIRADOR_RUL_TRAINING_PATH"); v != "" {
		cfg.Data.TrainingPath = v
	}
	if v := os.Getenv("MIRADOR_RUL_OBSERVATIONS_PATH"); v != "" {
		cfg.Data.ObservationsPath = v
	}
	if v := os.Getenv("MIRADOR_RUL_REFERENCE_TIME"); v != "" {
		cfg.Scoring.ReferenceTime = v
	}
	if v := os.Getenv("MIRADOR_RUL_REPORT_PATH"); v != "" {
		cfg.Report.OutputPath = v
	}
	if v := os.Getenv("MIRADOR_RUL_PLOT_PATH"); v != "" {
		cfg.Report.PlotPath = v
	}
	if v := os.Getenv("MIRADOR_RUL_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("MIRADOR_RUL_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("MIRADOR_RUL_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("MIRADOR_RUL_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("MIRADOR_RUL_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("MIRADOR_RUL_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("MIRADOR_RUL_CACHE_TLS"); strings.EqualFold(v, "true") || strings.EqualFold(v, "1") {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("MIRADOR_RUL_CACHE_TABLE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TableTTL = d
		}
	}
	if v := os.Getenv("MIRADOR_RUL_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
		cfg.Database.Enabled = true
	}
}
