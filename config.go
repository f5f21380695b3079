package confluence

import (
	"context"

	"github.com/spf13/viper"

	"github.com/goliatone/go-confluence/internal/runtimeconfig"
)

var (
	ErrImageWidthInvalid          = runtimeconfig.ErrImageWidthInvalid
	ErrMarkdownContentDirRequired = runtimeconfig.ErrMarkdownContentDirRequired
	ErrPublishRetriesInvalid      = runtimeconfig.ErrPublishRetriesInvalid
	ErrSpaceKeyInvalid            = runtimeconfig.ErrSpaceKeyInvalid
	ErrLedgerDriverUnknown        = runtimeconfig.ErrLedgerDriverUnknown
	ErrLedgerDSNRequired          = runtimeconfig.ErrLedgerDSNRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	ConvertConfig        = runtimeconfig.ConvertConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	PublishConfig        = runtimeconfig.PublishConfig
	LedgerConfig         = runtimeconfig.LedgerConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads path (or the default search locations when empty), applies
// CONFLUENCE_* environment overrides and validates the result.
func LoadConfig(ctx context.Context, path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	return runtimeconfig.Load(ctx, v)
}
