package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-confluence/internal/publish/ledger"
)

var ErrImageWidthInvalid = errors.New("confluence config: image width must be zero or positive")
var ErrMarkdownContentDirRequired = errors.New("confluence config: markdown content directory is required")

// ErrPublishRetriesInvalid guards the dispatcher retry budget.
var ErrPublishRetriesInvalid = errors.New("confluence config: publish retries must be zero or positive")
var ErrSpaceKeyInvalid = errors.New("confluence config: publish space key is invalid")
var ErrLedgerDriverUnknown = errors.New("confluence config: ledger driver is invalid")
var ErrLedgerDSNRequired = errors.New("confluence config: ledger dsn is required for persistent drivers")
var ErrLoggingProviderRequired = errors.New("confluence config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("confluence config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("confluence config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("confluence config: logging format is invalid")

// Config aggregates the settings of the converter, the source loader, the
// publish workflow and logging.
type Config struct {
	Convert  ConvertConfig  `mapstructure:"convert"`
	Markdown MarkdownConfig `mapstructure:"markdown"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ConvertConfig controls the line rewriter.
type ConvertConfig struct {
	// ImageWidth is applied to local image tokens; zero omits the width.
	ImageWidth int `mapstructure:"image_width"`
	// BaseDir anchors relative image paths for text converted without a
	// source file.
	BaseDir string `mapstructure:"base_dir"`
}

// MarkdownConfig captures filesystem and parser behaviour for source loading.
type MarkdownConfig struct {
	ContentDir string               `mapstructure:"content_dir"`
	Pattern    string               `mapstructure:"pattern"`
	Recursive  bool                 `mapstructure:"recursive"`
	Parser     MarkdownParserConfig `mapstructure:"parser"`
}

// MarkdownParserConfig mirrors markdown.ParseOptions for the HTML preview.
type MarkdownParserConfig struct {
	Extensions []string `mapstructure:"extensions"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}

// PublishConfig captures publish defaults.
type PublishConfig struct {
	// Space is used when neither the command nor the source names one.
	Space         string `mapstructure:"space"`
	MinorEdit     bool   `mapstructure:"minor_edit"`
	FullWidth     bool   `mapstructure:"full_width"`
	SkipUnchanged bool   `mapstructure:"skip_unchanged"`
	Retries       int    `mapstructure:"retries"`
}

// LedgerConfig selects the store that remembers published checksums.
type LedgerConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

// DefaultConfig returns defaults suited to converting a local docs tree.
func DefaultConfig() Config {
	return Config{
		Convert: ConvertConfig{},
		Markdown: MarkdownConfig{
			ContentDir: ".",
			Pattern:    "*.md",
			Recursive:  true,
			Parser: MarkdownParserConfig{
				Extensions: []string{"table", "strikethrough", "tasklist"},
			},
		},
		Publish: PublishConfig{
			MinorEdit:     true,
			SkipUnchanged: true,
			Retries:       2,
		},
		Ledger: LedgerConfig{
			Driver: ledger.DriverMemory,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Convert.ImageWidth < 0 {
		return fmt.Errorf("%w: %d", ErrImageWidthInvalid, cfg.Convert.ImageWidth)
	}
	if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
		return ErrMarkdownContentDirRequired
	}
	if cfg.Publish.Retries < 0 {
		return fmt.Errorf("%w: %d", ErrPublishRetriesInvalid, cfg.Publish.Retries)
	}
	if space := strings.TrimSpace(cfg.Publish.Space); space != "" && !isSpaceKey(space) {
		return fmt.Errorf("%w: %s", ErrSpaceKeyInvalid, space)
	}

	if !ledger.IsSupported(cfg.Ledger.Driver) {
		return fmt.Errorf("%w: %s", ErrLedgerDriverUnknown, cfg.Ledger.Driver)
	}
	if ledger.IsPersistent(cfg.Ledger.Driver) && strings.TrimSpace(cfg.Ledger.DSN) == "" {
		return fmt.Errorf("%w: %s", ErrLedgerDSNRequired, cfg.Ledger.Driver)
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func isSpaceKey(space string) bool {
	for _, r := range space {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '~', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
