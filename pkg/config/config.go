// Package config defines fastsdk-go's layered configuration: sane defaults,
// overridable by a YAML file, overridable again by FASTSDK_-prefixed
// environment variables (see loader.go).
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration tree.
type Config struct {
	App         AppConfig         `koanf:"app"`
	Log         LogConfig         `koanf:"log"`
	HTTP        HTTPConfig        `koanf:"http"`
	Poll        PollConfig        `koanf:"poll"`
	FileHandler FileHandlerConfig `koanf:"file_handler"`
	Providers   ProvidersConfig   `koanf:"providers"`
	Registry    RegistryConfig    `koanf:"registry"`
	Cache       CacheConfig       `koanf:"cache"`
	RateLimit   RateLimitConfig   `koanf:"rate_limit"`
	Tracing     TracingConfig     `koanf:"tracing"`
	Metrics     MetricsConfig     `koanf:"metrics"`
	Audit       AuditConfig       `koanf:"audit"`
}

// AppConfig holds application identity settings.
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level      string `koanf:"level"`  // debug, info, warn, error
	Format     string `koanf:"format"` // json, text
	Output     string `koanf:"output"` // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int  `koanf:"max_size"` // MB
	MaxBackups int  `koanf:"max_backups"`
	MaxAge     int  `koanf:"max_age"` // days
	Compress   bool `koanf:"compress"`
}

// HTTPConfig holds HTTP client settings. The runtime does not pass them to
// request.BaseClient, which uses request.DefaultTimeout and
// http.DefaultTransport.
type HTTPConfig struct {
	Timeout             time.Duration `koanf:"timeout"`
	MaxIdleConns        int           `koanf:"max_idle_conns"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"`
}

// PollConfig bounds the orchestrator's Polling stage.
type PollConfig struct {
	Interval          time.Duration `koanf:"interval"`            // default 1s
	MaxDuration       time.Duration `koanf:"max_duration"`        // default 3600s
	MaxTransientFails int           `koanf:"max_transient_fails"` // default 3
}

// FileHandlerConfig configures the Decide-Upload stage's thresholds.
type FileHandlerConfig struct {
	UploadThresholdMB float64 `koanf:"upload_threshold_mb"`
	MaxUploadMB       float64 `koanf:"max_upload_mb"`
}

// ProviderConfig names the environment variable an API key is read from
// and the key prefixes that variant accepts as valid, per the REDESIGN
// FLAGS note that provider key prefixes vary by revision and so must be
// configured rather than hardcoded.
type ProviderConfig struct {
	APIKeyEnvVar string   `koanf:"api_key_env_var"`
	KeyPrefixes  []string `koanf:"key_prefixes"`
	SignupURL    string   `koanf:"signup_url"`
}

// ProvidersConfig holds per-provider settings keyed by provider name.
type ProvidersConfig struct {
	Socaity   ProviderConfig `koanf:"socaity"`
	Runpod    ProviderConfig `koanf:"runpod"`
	Replicate ProviderConfig `koanf:"replicate"`
}

// RegistryConfig configures the Service Registry's backing store.
type RegistryConfig struct {
	Driver          string        `koanf:"driver"` // memory, file, postgres
	Path            string        `koanf:"path"`   // FileSystemStore root
	DSN             string        `koanf:"dsn"`    // PostgresStore
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	MigrationsPath  string        `koanf:"migrations_path"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSNOrDefault returns the configured DSN, used directly by pgx.
func (r RegistryConfig) DSNOrDefault() string {
	return r.DSN
}

// CacheConfig configures the spec-document / poll-response cache.
type CacheConfig struct {
	Driver     string        `koanf:"driver"` // memory, redis
	Addr       string        `koanf:"addr"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // in-memory only
}

// RateLimitConfig configures per-provider outbound throttling.
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Backend         string        `koanf:"backend"` // memory, redis
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
}

// TracingConfig configures pkg/telemetry.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// MetricsConfig configures pkg/metrics.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// AuditConfig configures pkg/audit's job-lifecycle sink.
type AuditConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Backend    string `koanf:"backend"` // logger, stdout, file
	BufferSize int    `koanf:"buffer_size"`
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Poll.Interval <= 0 {
		errs = append(errs, "poll.interval must be positive")
	}
	if c.Poll.MaxDuration <= 0 {
		errs = append(errs, "poll.max_duration must be positive")
	}

	validRegistryDrivers := map[string]bool{"memory": true, "file": true, "postgres": true}
	if !validRegistryDrivers[c.Registry.Driver] {
		errs = append(errs, fmt.Sprintf("registry.driver must be one of: memory, file, postgres, got %s", c.Registry.Driver))
	}
	if c.Registry.Driver == "postgres" && c.Registry.DSN == "" {
		errs = append(errs, "registry.dsn is required when registry.driver is postgres")
	}

	validCacheDrivers := map[string]bool{"memory": true, "redis": true}
	if !validCacheDrivers[c.Cache.Driver] {
		errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, got %s", c.Cache.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment reports whether App.Environment names a dev environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction reports whether App.Environment names a prod environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
