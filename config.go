package engine

import "github.com/goliatone/go-content-engine/internal/runtimeconfig"

var (
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrStorageDriverUnknown    = runtimeconfig.ErrStorageDriverUnknown
	ErrCacheRequiresBunStorage = runtimeconfig.ErrCacheRequiresBunStorage
	ErrCommandTimeoutNegative  = runtimeconfig.ErrCommandTimeoutNegative
)

type (
	Config               = runtimeconfig.Config
	LoggingConfig        = runtimeconfig.LoggingConfig
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	CommandsConfig       = runtimeconfig.CommandsConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
