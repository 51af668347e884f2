package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress || cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Simulation.ReferenceRegion != "Ahmedabad" || cfg.Simulation.DefaultLocation != "Ludhiana" {
		t.Errorf("unexpected simulation defaults: %+v", cfg.Simulation)
	}
	if cfg.Weather.Provider != WeatherStatic || cfg.Insights.Provider != InsightsNone {
		t.Errorf("unexpected collaborator defaults: %q %q", cfg.Weather.Provider, cfg.Insights.Provider)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  listen_address: "127.0.0.1:9000"
  read_timeout: "5s"
storage:
  backend: postgres
  postgres_dsn: "postgres://localhost/subsidy"
  clickhouse_dsn: "clickhouse://localhost:9000/subsidy"
  migrate: true
simulation:
  seed: 42
  schedule: "0 6 * * *"
  schedule_mode: basic
weather:
  provider: weatherapi
  api_key: "wk"
  cache_ttl: "2m"
insights:
  provider: gemini
  api_key: "gk"
telemetry:
  log_format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:9000" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("unexpected server: %+v", cfg.Server)
	}
	// Defaults fill the gaps
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if !cfg.Storage.Migrate || cfg.Storage.ClickhouseDSN == "" {
		t.Errorf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.Simulation.Seed != 42 || cfg.Simulation.Schedule != "0 6 * * *" || cfg.Simulation.ScheduleMode != "basic" {
		t.Errorf("unexpected simulation: %+v", cfg.Simulation)
	}
	if cfg.Weather.CacheTTL != 2*time.Minute || cfg.Weather.BaseURL != DefaultWeatherBaseURL {
		t.Errorf("unexpected weather: %+v", cfg.Weather)
	}
	if cfg.Insights.Model != DefaultInsightsModel {
		t.Errorf("unexpected insights model %q", cfg.Insights.Model)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "server:\n  listen_address: \":7000\"\n")
	t.Setenv("SUBSIDY_SERVER_LISTEN_ADDRESS", ":7100")
	t.Setenv("SUBSIDY_SIMULATION_SEED", "7")
	t.Setenv("SUBSIDY_WEATHER_CACHE_TTL", "90s")
	t.Setenv("SUBSIDY_STORAGE_MIGRATE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.ListenAddress != ":7100" {
		t.Errorf("env should win over file, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Simulation.Seed != 7 || cfg.Weather.CacheTTL != 90*time.Second || !cfg.Storage.Migrate {
		t.Errorf("overrides not applied: %+v %+v %+v", cfg.Simulation, cfg.Weather, cfg.Storage)
	}
}

func TestLoad_MalformedEnvOverride(t *testing.T) {
	t.Setenv("SUBSIDY_WEATHER_TIMEOUT", "soon")

	_, err := Load("")
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Errors[0].Field != "SUBSIDY_WEATHER_TIMEOUT" {
		t.Errorf("unexpected field %q", ve.Errors[0].Field)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "server: [")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = BackendPostgres }, "storage.postgres_dsn"},
		{"clickhouse with memory", func(c *Config) { c.Storage.ClickhouseDSN = "clickhouse://x" }, "storage.clickhouse_dsn"},
		{"bad cron", func(c *Config) { c.Simulation.Schedule = "every day" }, "simulation.schedule"},
		{"bad schedule mode", func(c *Config) { c.Simulation.ScheduleMode = "fancy" }, "simulation.schedule_mode"},
		{"weatherapi without key", func(c *Config) { c.Weather.Provider = WeatherWeatherAPI }, "weather.api_key"},
		{"unknown weather provider", func(c *Config) { c.Weather.Provider = "owm" }, "weather.provider"},
		{"gemini without key", func(c *Config) { c.Insights.Provider = InsightsGemini }, "insights.api_key"},
		{"bad insights url", func(c *Config) {
			c.Insights.Provider = InsightsGemini
			c.Insights.APIKey = "k"
			c.Insights.BaseURL = "not a url"
		}, "insights.base_url"},
		{"bad log level", func(c *Config) { c.Telemetry.LogLevel = "loud" }, "telemetry.log_level"},
		{"bad log format", func(c *Config) { c.Telemetry.LogFormat = "xml" }, "telemetry.log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range ve.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, ve.Errors)
			}
		})
	}
}

func TestValidate_DefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	one := ValidationError{Errors: []FieldError{{"a", "bad"}}}
	if one.Error() != "configuration validation failed: a: bad" {
		t.Errorf("unexpected message %q", one.Error())
	}
	two := ValidationError{Errors: []FieldError{{"a", "bad"}, {"b", "worse"}}}
	if !strings.Contains(two.Error(), "2 errors") || !strings.Contains(two.Error(), "  - b: worse") {
		t.Errorf("unexpected message %q", two.Error())
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "# comment\nSUBSIDY_TEST_A=one\nSUBSIDY_TEST_B=\"two\"\nbroken line\nSUBSIDY_TEST_C=three\n")
	t.Setenv("SUBSIDY_TEST_C", "kept")
	t.Setenv("SUBSIDY_TEST_A", "")
	os.Unsetenv("SUBSIDY_TEST_A")
	os.Unsetenv("SUBSIDY_TEST_B")
	t.Cleanup(func() { os.Unsetenv("SUBSIDY_TEST_B") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	if os.Getenv("SUBSIDY_TEST_A") != "one" || os.Getenv("SUBSIDY_TEST_B") != "two" {
		t.Errorf("values not loaded: %q %q", os.Getenv("SUBSIDY_TEST_A"), os.Getenv("SUBSIDY_TEST_B"))
	}
	if os.Getenv("SUBSIDY_TEST_C") != "kept" {
		t.Error("existing variable was overridden")
	}

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "none")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}

func TestTelemetry_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := TelemetryConfig{LogLevel: "warn", LogFormat: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"service":"subsidy-lab"`) {
		t.Errorf("unexpected log output %q", out)
	}
}
