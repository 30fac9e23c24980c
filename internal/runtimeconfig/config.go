// Package runtimeconfig holds the engine's declarative configuration. The
// root package re-exports these types so hosts configure the module without
// importing internals.
package runtimeconfig

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrLoggingProviderUnknown  = errors.New("config: unknown logging provider")
	ErrStorageDriverUnknown    = errors.New("config: unknown storage driver")
	ErrCacheRequiresBunStorage = errors.New("config: cache requires the bun storage driver")
	ErrCommandTimeoutNegative  = errors.New("config: command timeout must not be negative")
)

// Storage drivers.
const (
	StorageDriverMemory = "memory"
	StorageDriverBun    = "bun"
)

// Logging providers.
const (
	LoggingProviderGoLogger = "gologger"
	LoggingProviderNoop     = "noop"
)

// Config is the full engine configuration.
type Config struct {
	Logging  LoggingConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Commands CommandsConfig
	Markdown MarkdownConfig
}

// LoggingConfig selects and tunes the logger provider.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
}

// StorageConfig selects the event store and read model backing.
type StorageConfig struct {
	Driver string
}

// CacheConfig controls read model caching. Only meaningful with the bun
// storage driver.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// CommandsConfig tunes the command handlers.
type CommandsConfig struct {
	Timeout time.Duration
}

// MarkdownConfig configures document discovery and import.
type MarkdownConfig struct {
	// BodyField names the rich text field that receives rendered bodies.
	BodyField string
	// DefaultLanguage applies when a file path carries no language segment.
	// Empty routes such documents to the invariant slot.
	DefaultLanguage string
	// Languages lists the codes recognised as leading path segments.
	Languages []string
	// Pattern is the file glob (defaults to "*.md").
	Pattern   string
	Recursive bool
	Parser    MarkdownParserConfig
}

// MarkdownParserConfig tunes the goldmark renderer.
type MarkdownParserConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// DefaultConfig returns the configuration New applies when fields are left
// zero: memory storage, JSON logging at info, 30s command timeout.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Provider: LoggingProviderGoLogger,
			Level:    "info",
			Format:   "json",
		},
		Storage: StorageConfig{
			Driver: StorageDriverMemory,
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
		Markdown: MarkdownConfig{
			BodyField: "body",
			Pattern:   "*.md",
			Recursive: true,
		},
	}
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Provider)) {
	case "", LoggingProviderGoLogger, LoggingProviderNoop:
	default:
		return ErrLoggingProviderUnknown
	}

	driver := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch driver {
	case "", StorageDriverMemory, StorageDriverBun:
	default:
		return ErrStorageDriverUnknown
	}

	if c.Cache.Enabled && driver != StorageDriverBun {
		return ErrCacheRequiresBunStorage
	}

	if c.Commands.Timeout < 0 {
		return ErrCommandTimeoutNegative
	}

	return nil
}
