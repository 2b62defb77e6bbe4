package config

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				App:      AppConfig{Name: "test-service"},
				Log:      LogConfig{Level: "info"},
				Poll:     PollConfig{Interval: time.Second, MaxDuration: time.Hour},
				Registry: RegistryConfig{Driver: "memory"},
				Cache:    CacheConfig{Driver: "memory"},
			},
			wantErr: false,
		},
		{
			name: "missing app name",
			cfg: Config{
				Log:      LogConfig{Level: "info"},
				Poll:     PollConfig{Interval: time.Second, MaxDuration: time.Hour},
				Registry: RegistryConfig{Driver: "memory"},
				Cache:    CacheConfig{Driver: "memory"},
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			cfg: Config{
				App:      AppConfig{Name: "test"},
				Log:      LogConfig{Level: "invalid"},
				Poll:     PollConfig{Interval: time.Second, MaxDuration: time.Hour},
				Registry: RegistryConfig{Driver: "memory"},
				Cache:    CacheConfig{Driver: "memory"},
			},
			wantErr: true,
		},
		{
			name: "valid debug level",
			cfg: Config{
				App:      AppConfig{Name: "test"},
				Log:      LogConfig{Level: "debug"},
				Poll:     PollConfig{Interval: time.Second, MaxDuration: time.Hour},
				Registry: RegistryConfig{Driver: "memory"},
				Cache:    CacheConfig{Driver: "memory"},
			},
			wantErr: false,
		},
		{
			name: "zero poll interval",
			cfg: Config{
				App:      AppConfig{Name: "test"},
				Log:      LogConfig{Level: "info"},
				Poll:     PollConfig{Interval: 0, MaxDuration: time.Hour},
				Registry: RegistryConfig{Driver: "memory"},
				Cache:    CacheConfig{Driver: "memory"},
			},
			wantErr: true,
		},
		{
			name: "unknown registry driver",
			cfg: Config{
				App:      AppConfig{Name: "test"},
				Log:      LogConfig{Level: "info"},
				Poll:     PollConfig{Interval: time.Second, MaxDuration: time.Hour},
				Registry: RegistryConfig{Driver: "mongo"},
				Cache:    CacheConfig{Driver: "memory"},
			},
			wantErr: true,
		},
		{
			name: "postgres driver without dsn",
			cfg: Config{
				App:      AppConfig{Name: "test"},
				Log:      LogConfig{Level: "info"},
				Poll:     PollConfig{Interval: time.Second, MaxDuration: time.Hour},
				Registry: RegistryConfig{Driver: "postgres"},
				Cache:    CacheConfig{Driver: "memory"},
			},
			wantErr: true,
		},
		{
			name: "postgres driver with dsn",
			cfg: Config{
				App:      AppConfig{Name: "test"},
				Log:      LogConfig{Level: "info"},
				Poll:     PollConfig{Interval: time.Second, MaxDuration: time.Hour},
				Registry: RegistryConfig{Driver: "postgres", DSN: "postgres://localhost/fastsdk"},
				Cache:    CacheConfig{Driver: "memory"},
			},
			wantErr: false,
		},
		{
			name: "unknown cache driver",
			cfg: Config{
				App:      AppConfig{Name: "test"},
				Log:      LogConfig{Level: "info"},
				Poll:     PollConfig{Interval: time.Second, MaxDuration: time.Hour},
				Registry: RegistryConfig{Driver: "memory"},
				Cache:    CacheConfig{Driver: "memcached"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestRegistryConfig_DSNOrDefault(t *testing.T) {
	cfg := RegistryConfig{DSN: "postgres://localhost/fastsdk"}
	if got := cfg.DSNOrDefault(); got != "postgres://localhost/fastsdk" {
		t.Errorf("DSNOrDefault() = %s, want postgres://localhost/fastsdk", got)
	}
}

func TestProviderConfig(t *testing.T) {
	cfg := ProviderConfig{
		APIKeyEnvVar: "RUNPOD_API_KEY",
		KeyPrefixes:  []string{"rpa_"},
		SignupURL:    "https://www.runpod.io",
	}

	if cfg.APIKeyEnvVar != "RUNPOD_API_KEY" {
		t.Errorf("unexpected APIKeyEnvVar: %v", cfg.APIKeyEnvVar)
	}
	if len(cfg.KeyPrefixes) != 1 || cfg.KeyPrefixes[0] != "rpa_" {
		t.Errorf("unexpected KeyPrefixes: %v", cfg.KeyPrefixes)
	}
}
