package runtimeconfig

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Logging.Provider != LoggingProviderGoLogger || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging defaults: %#v", cfg.Logging)
	}
	if cfg.Storage.Driver != StorageDriverMemory {
		t.Fatalf("unexpected storage default: %#v", cfg.Storage)
	}
	if cfg.Commands.Timeout != 30*time.Second {
		t.Fatalf("unexpected command timeout: %v", cfg.Commands.Timeout)
	}
	if cfg.Markdown.BodyField != "body" || cfg.Markdown.Pattern != "*.md" || !cfg.Markdown.Recursive {
		t.Fatalf("unexpected markdown defaults: %#v", cfg.Markdown)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "zero config is valid",
			mutate: func(c *Config) { *c = Config{} },
		},
		{
			name:    "unknown logging provider",
			mutate:  func(c *Config) { c.Logging.Provider = "zap" },
			wantErr: ErrLoggingProviderUnknown,
		},
		{
			name:    "unknown storage driver",
			mutate:  func(c *Config) { c.Storage.Driver = "postgres" },
			wantErr: ErrStorageDriverUnknown,
		},
		{
			name: "cache without bun storage",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Storage.Driver = StorageDriverMemory
			},
			wantErr: ErrCacheRequiresBunStorage,
		},
		{
			name: "cache with bun storage",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Storage.Driver = StorageDriverBun
			},
		},
		{
			name:    "negative command timeout",
			mutate:  func(c *Config) { c.Commands.Timeout = -time.Second },
			wantErr: ErrCommandTimeoutNegative,
		},
		{
			name:   "driver names are case-insensitive",
			mutate: func(c *Config) { c.Storage.Driver = "Memory" },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
