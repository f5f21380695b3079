package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-confluence/pkg/interfaces"
)

const (
	rootModule     = "confluence"
	convertModule  = "confluence.convert"
	publishModule  = "confluence.publish"
	markdownModule = "confluence.markdown"
)

// CommandsModule is the namespace root of command handler loggers.
const CommandsModule = "confluence.commands"

const (
	fieldSourcePath = "source_path"
	fieldRunID      = "run_id"
	fieldSpace      = "space"
	fieldTitle      = "title"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered per module.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ConvertLogger returns the logger namespace reserved for conversion runs.
func ConvertLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, convertModule)
}

// PublishLogger returns the logger namespace reserved for page publishing.
func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// MarkdownLogger returns the logger namespace reserved for source loading.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, CommandsModule)
}

// WithConversionContext enriches logger with the source path and run id of a
// conversion. Empty values are ignored.
func WithConversionContext(logger interfaces.Logger, sourcePath, runID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(sourcePath); trimmed != "" {
		fields[fieldSourcePath] = trimmed
	}
	if trimmed := strings.TrimSpace(runID); trimmed != "" {
		fields[fieldRunID] = trimmed
	}
	return WithFields(logger, fields)
}

// WithPageContext enriches logger with the target space and page title.
func WithPageContext(logger interfaces.Logger, space, title string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(space); trimmed != "" {
		fields[fieldSpace] = trimmed
	}
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		fields[fieldTitle] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
