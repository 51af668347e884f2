package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SUBSIDY_"

// Load builds the configuration.
// The loading sequence is:
//  1. Load YAML from path (skipped when path is empty)
//  2. Apply default values
//  3. Apply SUBSIDY_* environment variable overrides
//  4. Validate final configuration
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

// applyEnvOverrides applies SUBSIDY_SECTION_FIELD overrides.
// Malformed numbers and durations are reported, not ignored.
func applyEnvOverrides(cfg *Config, lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	// Server overrides
	e.str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	e.duration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	e.duration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	e.duration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	e.duration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Storage overrides
	e.str("STORAGE_BACKEND", &cfg.Storage.Backend)
	e.str("STORAGE_POSTGRES_DSN", &cfg.Storage.PostgresDSN)
	e.str("STORAGE_CLICKHOUSE_DSN", &cfg.Storage.ClickhouseDSN)
	e.boolean("STORAGE_MIGRATE", &cfg.Storage.Migrate)
	e.boolean("STORAGE_SKIP_REFERENCE_DATA", &cfg.Storage.SkipReferenceData)

	// Simulation overrides
	e.str("SIMULATION_REFERENCE_REGION", &cfg.Simulation.ReferenceRegion)
	e.uint64("SIMULATION_SEED", &cfg.Simulation.Seed)
	e.str("SIMULATION_SCHEDULE", &cfg.Simulation.Schedule)
	e.str("SIMULATION_SCHEDULE_MODE", &cfg.Simulation.ScheduleMode)
	e.str("SIMULATION_DEFAULT_LOCATION", &cfg.Simulation.DefaultLocation)

	// Weather overrides
	e.str("WEATHER_PROVIDER", &cfg.Weather.Provider)
	e.str("WEATHER_BASE_URL", &cfg.Weather.BaseURL)
	e.str("WEATHER_API_KEY", &cfg.Weather.APIKey)
	e.duration("WEATHER_TIMEOUT", &cfg.Weather.Timeout)
	e.integer("WEATHER_CACHE_SIZE", &cfg.Weather.CacheSize)
	e.duration("WEATHER_CACHE_TTL", &cfg.Weather.CacheTTL)
	e.uint32("WEATHER_BREAKER_FAILURES", &cfg.Weather.BreakerFailures)
	e.duration("WEATHER_BREAKER_OPEN", &cfg.Weather.BreakerOpen)
	e.uint64("WEATHER_MAX_RETRIES", &cfg.Weather.MaxRetries)

	// Insights overrides
	e.str("INSIGHTS_PROVIDER", &cfg.Insights.Provider)
	e.str("INSIGHTS_BASE_URL", &cfg.Insights.BaseURL)
	e.str("INSIGHTS_API_KEY", &cfg.Insights.APIKey)
	e.str("INSIGHTS_MODEL", &cfg.Insights.Model)
	e.duration("INSIGHTS_TIMEOUT", &cfg.Insights.Timeout)

	// Telemetry overrides
	e.str("TELEMETRY_LOG_LEVEL", &cfg.Telemetry.LogLevel)
	e.str("TELEMETRY_LOG_FORMAT", &cfg.Telemetry.LogFormat)
	e.str("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.MetricsNamespace)

	if len(e.errs) > 0 {
		return ValidationError{Errors: e.errs}
	}
	return nil
}

// envReader reads typed overrides and collects parse failures.
type envReader struct {
	lookup lookupFunc
	errs   []FieldError
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) fail(key string, err error) {
	e.errs = append(e.errs, FieldError{Field: EnvPrefix + key, Message: err.Error()})
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = d
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = i
	}
}

func (e *envReader) uint32(key string, dst *uint32) {
	if v, ok := e.get(key); ok {
		u, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = uint32(u)
	}
}

func (e *envReader) uint64(key string, dst *uint64) {
	if v, ok := e.get(key); ok {
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = u
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = b
	}
}

// LoadEnvFile loads KEY=VALUE lines from path into the process environment.
// Existing variables are not overridden. A missing file is not an error.
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read env file %q: %w", path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Don't override existing env vars
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
		}
	}
	return nil
}
