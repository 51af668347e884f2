// Package config loads the service configuration from YAML with defaults,
// SUBSIDY_* environment overrides and validation.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Simulation SimulationConfig `yaml:"simulation"`
	Weather    WeatherConfig    `yaml:"weather"`
	Insights   InsightsConfig   `yaml:"insights"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	ListenAddress   string        `yaml:"listen_address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// StorageConfig selects the stores.
// With the postgres backend, rules and indicators live in PostgreSQL; the run
// ledger uses ClickHouse when a DSN is set and memory otherwise.
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	Migrate       bool   `yaml:"migrate"`
	// SkipReferenceData leaves the indicator store unseeded.
	SkipReferenceData bool `yaml:"skip_reference_data"`
}

// SimulationConfig configures runs.
type SimulationConfig struct {
	ReferenceRegion string `yaml:"reference_region"`
	// Seed fixes the basic-mode RNG of every run; 0 seeds from the clock.
	Seed uint64 `yaml:"seed"`
	// Schedule is a cron spec for recurring runs; empty disables scheduling.
	Schedule        string `yaml:"schedule"`
	ScheduleMode    string `yaml:"schedule_mode"`
	DefaultLocation string `yaml:"default_location"`
}

// Weather providers.
const (
	WeatherStatic     = "static"
	WeatherWeatherAPI = "weatherapi"
)

// WeatherConfig configures the weather provider.
type WeatherConfig struct {
	Provider        string        `yaml:"provider"`
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"`
	Timeout         time.Duration `yaml:"timeout"`
	CacheSize       int           `yaml:"cache_size"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerOpen     time.Duration `yaml:"breaker_open"`
	MaxRetries      uint64        `yaml:"max_retries"`
}

// Insight providers.
const (
	InsightsNone   = "none"
	InsightsGemini = "gemini"
)

// InsightsConfig configures the narrative generator.
type InsightsConfig struct {
	Provider string        `yaml:"provider"`
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	LogLevel         string `yaml:"log_level"`
	LogFormat        string `yaml:"log_format"`
	MetricsNamespace string `yaml:"metrics_namespace"`
}
