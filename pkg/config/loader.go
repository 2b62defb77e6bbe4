package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "FASTSDK_"
	configEnvVar = "FASTSDK_CONFIG_PATH"
)

// Loader assembles a Config from defaults, an optional YAML file, and
// environment variables, in that order of increasing priority.
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader creates a configuration loader with the default search paths.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"fastsdk.yaml",
			"config/fastsdk.yaml",
			"/etc/fastsdk/fastsdk.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

type LoaderOption func(*Loader)

// WithConfigPaths overrides the file search paths.
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load loads configuration with priority: defaults (lowest), config file,
// environment variables (highest).
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        "fastsdk",
		"app.version":     "0.1.0",
		"app.environment": "development",
		"app.debug":       false,

		// Log
		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// HTTP
		"http.timeout":                 30 * time.Second,
		"http.max_idle_conns":          100,
		"http.max_idle_conns_per_host": 10,
		"http.idle_conn_timeout":       90 * time.Second,

		// Poll
		"poll.interval":            1 * time.Second,
		"poll.max_duration":        3600 * time.Second,
		"poll.max_transient_fails": 3,

		// File handler
		"file_handler.upload_threshold_mb": 5.0,
		"file_handler.max_upload_mb":       0.0, // 0 = no hard cap

		// Providers
		"providers.socaity.api_key_env_var": "SOCAITY_API_KEY",
		"providers.socaity.key_prefixes":    []string{},
		"providers.socaity.signup_url":      "https://www.socaity.ai",

		"providers.runpod.api_key_env_var": "RUNPOD_API_KEY",
		"providers.runpod.key_prefixes":    []string{"rpa_"},
		"providers.runpod.signup_url":      "https://www.runpod.io",

		"providers.replicate.api_key_env_var": "REPLICATE_API_TOKEN",
		"providers.replicate.key_prefixes":    []string{"r8_"},
		"providers.replicate.signup_url":      "https://replicate.com",

		// Registry
		"registry.driver":            "memory",
		"registry.path":              "./fastsdk_registry",
		"registry.max_open_conns":    10,
		"registry.max_idle_conns":    2,
		"registry.conn_max_lifetime": 30 * time.Minute,
		"registry.migrations_path":   "registry/migrations",
		"registry.auto_migrate":      true,

		// Cache
		"cache.driver":      "memory",
		"cache.addr":        "localhost:6379",
		"cache.db":          0,
		"cache.default_ttl": 10 * time.Minute,
		"cache.max_entries": 10000,

		// Rate limit
		"rate_limit.enabled":          false,
		"rate_limit.requests":         60,
		"rate_limit.window":           time.Minute,
		"rate_limit.backend":          "memory",
		"rate_limit.burst_size":       10,
		"rate_limit.cleanup_interval": 5 * time.Minute,

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "fastsdk",
		"tracing.sample_rate":  0.1,

		// Metrics
		"metrics.enabled":   true,
		"metrics.namespace": "fastsdk",
		"metrics.subsystem": "",

		// Audit
		"audit.enabled":     true,
		"audit.backend":     "logger",
		"audit.buffer_size": 1000,
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return l.k.Load(file.Provider(configPath), yaml.Parser())
		}
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return fmt.Errorf("config file not found in paths: %v", l.configPaths)
}

func (l *Loader) loadEnv() error {
	return l.k.Load(env.Provider(l.envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(
				strings.TrimPrefix(s, l.envPrefix),
			),
			"_", ".",
		)
	}), nil)
}

// MustLoad loads configuration or panics.
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load is a convenience function using default loader settings.
func Load() (*Config, error) {
	return NewLoader().Load()
}
