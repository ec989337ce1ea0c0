package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "arena.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "ARENA_PORT")
	setString(&cfg.Server.CORSOrigin, "ARENA_CORS_ORIGIN")
	setString(&cfg.Logging.Level, "ARENA_LOG_LEVEL")
	setString(&cfg.Logging.Service, "ARENA_LOG_SERVICE")

	setInt(&cfg.Engine.MaxConcurrentTasks, "ARENA_MAX_CONCURRENT_TASKS")
	setDuration(&cfg.Engine.DefaultStepTimeout, "ARENA_STEP_TIMEOUT")
	setDuration(&cfg.Engine.DefaultTaskTimeout, "ARENA_TASK_TIMEOUT")
	setDuration(&cfg.Engine.DefaultRetryDelay, "ARENA_RETRY_DELAY")
	setInt(&cfg.Engine.HistoryLimit, "ARENA_HISTORY_LIMIT")
	setBool(&cfg.Engine.RequireCompletedDeps, "ARENA_REQUIRE_COMPLETED_DEPS")
	setString(&cfg.Engine.TaskDirectory, "ARENA_TASK_DIR")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "ARENA_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "ARENA_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "ARENA_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "ARENA_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "ARENA_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")

	setInt64(&cfg.Cache.MaxCostBytes, "ARENA_CACHE_MAX_COST")
	setDuration(&cfg.Cache.TTL, "ARENA_CACHE_TTL")

	setInt(&cfg.Breaker.MaxFailures, "ARENA_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "ARENA_BREAKER_TIMEOUT")

	setString(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.Telemetry.Insecure, "ARENA_OTEL_INSECURE")

	setString(&cfg.Platforms.Salesforce.Credentials.APIKey, "ARENA_SALESFORCE_API_KEY")
	setString(&cfg.Platforms.ServiceNow.Credentials.APIKey, "ARENA_SERVICENOW_API_KEY")
	setString(&cfg.Platforms.NetSuite.Credentials.APIKey, "ARENA_NETSUITE_API_KEY")
	setString(&cfg.Platforms.QuickBooks.Credentials.APIKey, "ARENA_QUICKBOOKS_API_KEY")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Engine.MaxConcurrentTasks < 1 {
		return errors.New("engine.max_concurrent_tasks must be >= 1")
	}
	if cfg.Engine.DefaultStepTimeout <= 0 {
		return errors.New("engine.default_step_timeout must be positive")
	}
	if cfg.Postgres.DSN != "" && cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Cache.MaxCostBytes < 1 {
		return errors.New("cache.max_cost_bytes must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
