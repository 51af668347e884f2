package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field   string
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field error of a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the configuration. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateSimulation(&cfg.Simulation)...)
	errs = append(errs, validateWeather(&cfg.Weather)...)
	errs = append(errs, validateInsights(&cfg.Insights)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError
	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{"server", "timeouts must not be negative"})
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must be positive"})
	}
	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError
	switch cfg.Backend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			errs = append(errs, FieldError{"storage.postgres_dsn", "required for the postgres backend"})
		}
	default:
		errs = append(errs, FieldError{"storage.backend", fmt.Sprintf("must be %q or %q, got %q", BackendMemory, BackendPostgres, cfg.Backend)})
	}
	if cfg.ClickhouseDSN != "" && cfg.Backend == BackendMemory {
		errs = append(errs, FieldError{"storage.clickhouse_dsn", "only used with the postgres backend"})
	}
	return errs
}

func validateSimulation(cfg *SimulationConfig) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(cfg.ReferenceRegion) == "" {
		errs = append(errs, FieldError{"simulation.reference_region", "must not be empty"})
	}
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{"simulation.schedule", fmt.Sprintf("invalid cron spec: %v", err)})
		}
	}
	if cfg.ScheduleMode != "basic" && cfg.ScheduleMode != "realistic" {
		errs = append(errs, FieldError{"simulation.schedule_mode", fmt.Sprintf("must be \"basic\" or \"realistic\", got %q", cfg.ScheduleMode)})
	}
	return errs
}

func validateWeather(cfg *WeatherConfig) []FieldError {
	var errs []FieldError
	switch cfg.Provider {
	case WeatherStatic:
	case WeatherWeatherAPI:
		if cfg.APIKey == "" {
			errs = append(errs, FieldError{"weather.api_key", "required for the weatherapi provider"})
		}
		errs = append(errs, validateURL("weather.base_url", cfg.BaseURL)...)
	default:
		errs = append(errs, FieldError{"weather.provider", fmt.Sprintf("must be %q or %q, got %q", WeatherStatic, WeatherWeatherAPI, cfg.Provider)})
	}
	if cfg.CacheSize < 0 {
		errs = append(errs, FieldError{"weather.cache_size", "must not be negative"})
	}
	if cfg.Timeout < 0 || cfg.CacheTTL < 0 || cfg.BreakerOpen < 0 {
		errs = append(errs, FieldError{"weather", "durations must not be negative"})
	}
	return errs
}

func validateInsights(cfg *InsightsConfig) []FieldError {
	var errs []FieldError
	switch cfg.Provider {
	case InsightsNone:
	case InsightsGemini:
		if cfg.APIKey == "" {
			errs = append(errs, FieldError{"insights.api_key", "required for the gemini provider"})
		}
		errs = append(errs, validateURL("insights.base_url", cfg.BaseURL)...)
	default:
		errs = append(errs, FieldError{"insights.provider", fmt.Sprintf("must be %q or %q, got %q", InsightsNone, InsightsGemini, cfg.Provider)})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{"insights.timeout", "must not be negative"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, FieldError{"telemetry.log_level", err.Error()})
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		errs = append(errs, FieldError{"telemetry.log_format", fmt.Sprintf("must be \"json\" or \"text\", got %q", cfg.LogFormat)})
	}
	return errs
}

func validateURL(field, raw string) []FieldError {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []FieldError{{field, fmt.Sprintf("invalid URL %q", raw)}}
	}
	return nil
}
