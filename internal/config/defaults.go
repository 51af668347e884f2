package config

import "time"

// Default values.
const (
	DefaultListenAddress   = ":8000"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultReferenceRegion = "Ahmedabad"
	DefaultScheduleMode    = "realistic"
	DefaultLocation        = "Ludhiana"

	DefaultWeatherBaseURL  = "https://api.weatherapi.com/v1"
	DefaultWeatherTimeout  = 10 * time.Second
	DefaultWeatherCache    = 128
	DefaultWeatherCacheTTL = 10 * time.Minute
	DefaultBreakerFailures = 3
	DefaultBreakerOpen     = 30 * time.Second
	DefaultMaxRetries      = 2

	DefaultInsightsBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultInsightsModel   = "gemini-pro"
	DefaultInsightsTimeout = 20 * time.Second

	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsNamespace = "subsidy_lab"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}

	// Simulation defaults
	if cfg.Simulation.ReferenceRegion == "" {
		cfg.Simulation.ReferenceRegion = DefaultReferenceRegion
	}
	if cfg.Simulation.ScheduleMode == "" {
		cfg.Simulation.ScheduleMode = DefaultScheduleMode
	}
	if cfg.Simulation.DefaultLocation == "" {
		cfg.Simulation.DefaultLocation = DefaultLocation
	}

	// Weather defaults
	if cfg.Weather.Provider == "" {
		cfg.Weather.Provider = WeatherStatic
	}
	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = DefaultWeatherBaseURL
	}
	if cfg.Weather.Timeout == 0 {
		cfg.Weather.Timeout = DefaultWeatherTimeout
	}
	if cfg.Weather.CacheSize == 0 {
		cfg.Weather.CacheSize = DefaultWeatherCache
	}
	if cfg.Weather.CacheTTL == 0 {
		cfg.Weather.CacheTTL = DefaultWeatherCacheTTL
	}
	if cfg.Weather.BreakerFailures == 0 {
		cfg.Weather.BreakerFailures = DefaultBreakerFailures
	}
	if cfg.Weather.BreakerOpen == 0 {
		cfg.Weather.BreakerOpen = DefaultBreakerOpen
	}
	if cfg.Weather.MaxRetries == 0 {
		cfg.Weather.MaxRetries = DefaultMaxRetries
	}

	// Insights defaults
	if cfg.Insights.Provider == "" {
		cfg.Insights.Provider = InsightsNone
	}
	if cfg.Insights.BaseURL == "" {
		cfg.Insights.BaseURL = DefaultInsightsBaseURL
	}
	if cfg.Insights.Model == "" {
		cfg.Insights.Model = DefaultInsightsModel
	}
	if cfg.Insights.Timeout == 0 {
		cfg.Insights.Timeout = DefaultInsightsTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.LogLevel == "" {
		cfg.Telemetry.LogLevel = DefaultLogLevel
	}
	if cfg.Telemetry.LogFormat == "" {
		cfg.Telemetry.LogFormat = DefaultLogFormat
	}
	if cfg.Telemetry.MetricsNamespace == "" {
		cfg.Telemetry.MetricsNamespace = DefaultMetricsNamespace
	}
}
