package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-confluence/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsNegativeImageWidth(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Convert.ImageWidth = -1

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrImageWidthInvalid) {
		t.Fatalf("expected ErrImageWidthInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresContentDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markdown.ContentDir = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrMarkdownContentDirRequired) {
		t.Fatalf("expected ErrMarkdownContentDirRequired, got %v", err)
	}
}

func TestConfigValidate_PublishSettings(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Publish.Retries = -2
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrPublishRetriesInvalid) {
		t.Fatalf("expected ErrPublishRetriesInvalid, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Publish.Space = "ENG DOCS"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrSpaceKeyInvalid) {
		t.Fatalf("expected ErrSpaceKeyInvalid, got %v", err)
	}

	cfg.Publish.Space = "~jdoe"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected personal space to be valid, got %v", err)
	}
}

func TestConfigValidate_Ledger(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Ledger.Driver = "mongo"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLedgerDriverUnknown) {
		t.Fatalf("expected ErrLedgerDriverUnknown, got %v", err)
	}

	cfg.Ledger.Driver = "sqlite"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLedgerDSNRequired) {
		t.Fatalf("expected ErrLedgerDSNRequired, got %v", err)
	}

	cfg.Ledger.DSN = "file:ledger.db"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected sqlite ledger to be valid, got %v", err)
	}

	cfg.Ledger = runtimeconfig.LedgerConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected empty driver to default to memory, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingLevel(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Level = "verbose"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}

	cfg.Logging.Provider = "console"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("console provider ignores format, got %v", err)
	}
}
