// Package config provides hierarchical configuration loading for Arena.
// Precedence: defaults < YAML file < environment variables.
package config

import (
	"time"

	"github.com/enterprisearena/arena/internal/domain/platform"
)

// Config holds all runtime configuration for the arena service.
type Config struct {
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
	Engine    Engine    `yaml:"engine"`
	Platforms Platforms `yaml:"platforms"`
	Postgres  Postgres  `yaml:"postgres"`
	NATS      NATS      `yaml:"nats"`
	Cache     Cache     `yaml:"cache"`
	Breaker   Breaker   `yaml:"breaker"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Engine holds orchestration engine configuration.
type Engine struct {
	MaxConcurrentTasks   int           `yaml:"max_concurrent_tasks"`   // Concurrent task executions (default: 8)
	DefaultStepTimeout   time.Duration `yaml:"default_step_timeout"`   // Per-step timeout when the step declares none (default: 60s)
	DefaultTaskTimeout   time.Duration `yaml:"default_task_timeout"`   // Aggregate timeout when the task declares none (default: 5m)
	DefaultRetryDelay    time.Duration `yaml:"default_retry_delay"`    // Retry delay when the step declares none (default: 1s)
	HistoryLimit         int           `yaml:"history_limit"`          // In-memory history ring size; 0 = unbounded (default: 256)
	RequireCompletedDeps bool          `yaml:"require_completed_deps"` // Skip steps whose dependencies did not all complete (default: false)
	TaskDirectory        string        `yaml:"task_directory"`         // Extra YAML task definitions to load at startup
}

// Platforms holds per-platform sandbox connector configuration.
type Platforms struct {
	Salesforce PlatformConfig `yaml:"salesforce"`
	ServiceNow PlatformConfig `yaml:"servicenow"`
	NetSuite   PlatformConfig `yaml:"netsuite"`
	QuickBooks PlatformConfig `yaml:"quickbooks"`
}

// PlatformConfig configures one sandbox connector.
type PlatformConfig struct {
	Enabled     bool                 `yaml:"enabled"`
	Credentials platform.Credentials `yaml:"credentials"`
	Latency     time.Duration        `yaml:"latency"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Postgres holds PostgreSQL history-store configuration.
// An empty DSN selects the in-memory history store.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	HealthCheck     time.Duration `yaml:"health_check"`
}

// NATS holds JetStream event publishing configuration.
// An empty URL disables NATS publishing.
type NATS struct {
	URL string `yaml:"url"`
}

// Cache holds the record-read cache configuration.
type Cache struct {
	MaxCostBytes int64         `yaml:"max_cost_bytes"`
	TTL          time.Duration `yaml:"ttl"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Breaker holds per-platform circuit breaker configuration.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Telemetry holds OpenTelemetry export configuration.
// An empty endpoint disables export.
type Telemetry struct {
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// Defaults returns a Config with sensible default values for local runs.
func Defaults() Config {
	sandboxCreds := platform.Credentials{
		APIKey:      "sandbox-key",
		Environment: "sandbox",
	}
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		Logging: Logging{
			Level:   "info",
			Service: "arena-core",
		},
		Engine: Engine{
			MaxConcurrentTasks: 8,
			DefaultStepTimeout: 60 * time.Second,
			DefaultTaskTimeout: 5 * time.Minute,
			DefaultRetryDelay:  time.Second,
			HistoryLimit:       256,
		},
		Platforms: Platforms{
			Salesforce: PlatformConfig{Enabled: true, Credentials: sandboxCreds},
			ServiceNow: PlatformConfig{Enabled: true, Credentials: sandboxCreds},
			NetSuite:   PlatformConfig{Enabled: true, Credentials: sandboxCreds},
			QuickBooks: PlatformConfig{Enabled: true, Credentials: sandboxCreds},
		},
		Postgres: Postgres{
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
			HealthCheck:     time.Minute,
		},
		Cache: Cache{
			MaxCostBytes: 32 << 20,
			TTL:          30 * time.Second,
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
	}
}
