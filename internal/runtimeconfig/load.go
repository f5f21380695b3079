package runtimeconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CONFLUENCE_PUBLISH_SPACE.
const EnvPrefix = "confluence"

// Option describes one configuration key, its default and its meaning.
type Option struct {
	Key     string
	Default any
	Comment string
}

// Options returns every known key with the value DefaultConfig assigns it.
func Options() []Option {
	d := DefaultConfig()
	return []Option{
		{Key: "convert.image_width", Default: d.Convert.ImageWidth, Comment: "Width applied to local images; 0 keeps the original size"},
		{Key: "convert.base_dir", Default: d.Convert.BaseDir, Comment: "Directory used to resolve relative images when no source file is known"},

		{Key: "markdown.content_dir", Default: d.Markdown.ContentDir, Comment: "Root directory of markdown sources"},
		{Key: "markdown.pattern", Default: d.Markdown.Pattern, Comment: "Glob matched against source file names"},
		{Key: "markdown.recursive", Default: d.Markdown.Recursive, Comment: "Descend into sub directories when loading a directory"},
		{Key: "markdown.parser.extensions", Default: d.Markdown.Parser.Extensions, Comment: "goldmark extensions enabled for previews"},
		{Key: "markdown.parser.hard_wraps", Default: d.Markdown.Parser.HardWraps, Comment: "Render soft line breaks as <br>"},
		{Key: "markdown.parser.safe_mode", Default: d.Markdown.Parser.SafeMode, Comment: "Drop raw HTML from previews"},

		{Key: "publish.space", Default: d.Publish.Space, Comment: "Space used when neither the command nor the frontmatter names one"},
		{Key: "publish.minor_edit", Default: d.Publish.MinorEdit, Comment: "Mark page updates as minor edits"},
		{Key: "publish.full_width", Default: d.Publish.FullWidth, Comment: "Render published pages in full width"},
		{Key: "publish.skip_unchanged", Default: d.Publish.SkipUnchanged, Comment: "Skip pages whose checksum matches the ledger"},
		{Key: "publish.retries", Default: d.Publish.Retries, Comment: "Retries for a failed publish command"},

		{Key: "ledger.driver", Default: d.Ledger.Driver, Comment: "Publish ledger backend: memory, sqlite or postgres"},
		{Key: "ledger.dsn", Default: d.Ledger.DSN, Comment: "Connection string for persistent ledger drivers"},

		{Key: "logging.provider", Default: d.Logging.Provider, Comment: "Logger provider: console or gologger"},
		{Key: "logging.level", Default: d.Logging.Level, Comment: "Minimum log level"},
		{Key: "logging.format", Default: d.Logging.Format, Comment: "gologger output format: console, json or pretty"},
		{Key: "logging.add_source", Default: d.Logging.AddSource, Comment: "Annotate gologger entries with the call site"},
		{Key: "logging.focus", Default: d.Logging.Focus, Comment: "Restrict gologger output to these modules"},
	}
}

func applyDefaults(v *viper.Viper) {
	for _, o := range Options() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env. The
// viper instance is mutated; callers may point it at a file with
// SetConfigFile beforehand. Without one, confluence.{yaml,toml,json} is looked
// up in the working directory and the user config directory.
func Load(ctx context.Context, v *viper.Viper) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}
	if v == nil {
		v = viper.New()
	}

	explicit := v.ConfigFileUsed() != ""
	if !explicit {
		v.SetConfigName("confluence")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "confluence"))
		}
	}

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("confluence config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("confluence config: decode: %w", err)
	}
	cfg.Markdown.Parser.Extensions = splitList(cfg.Markdown.Parser.Extensions)
	cfg.Logging.Focus = splitList(cfg.Logging.Focus)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitList accepts comma separated env values next to proper lists.
func splitList(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return strings.ToUpper(EnvPrefix + "_" + strings.ReplaceAll(key, ".", "_"))
}
