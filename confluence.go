// Package confluence converts markdown documents into Confluence wiki markup
// and publishes them, together with their local images, through a PageClient.
package confluence

import (
	"context"
	"io"

	publishcmd "github.com/goliatone/go-confluence/internal/commands/publish"
	"github.com/goliatone/go-confluence/internal/convert"
	"github.com/goliatone/go-confluence/internal/di"
	"github.com/goliatone/go-confluence/internal/markdown"
	"github.com/goliatone/go-confluence/internal/publish"
	"github.com/goliatone/go-confluence/internal/wiki"
	"github.com/goliatone/go-confluence/pkg/interfaces"
)

// Document exports the wiki markup document model.
type Document = wiki.Document

type (
	ImageOptions     = wiki.ImageOptions
	TOCOptions       = wiki.TOCOptions
	CodeBlockOptions = wiki.CodeBlockOptions
)

// Converter exports the markdown to wiki markup converter.
type Converter = convert.Converter

type (
	ConvertOptions = convert.Options
	Result         = convert.Result
	Upload         = convert.Upload
	Rule           = convert.Rule
	RuleFunc       = convert.RuleFunc
	Chain          = convert.Chain
	RuleSet        = convert.RuleSet
)

// Source exports a loaded markdown file with its frontmatter.
type Source = markdown.Source

type (
	PageClient     = interfaces.PageClient
	PageUpdate     = interfaces.PageUpdate
	PageStatus     = interfaces.PageStatus
	Attachment     = interfaces.Attachment
	Logger         = interfaces.Logger
	LoggerProvider = interfaces.LoggerProvider
	PublishOutcome = publish.Outcome
)

type (
	ConvertFileCommand      = publishcmd.ConvertFileCommand
	PublishFileCommand      = publishcmd.PublishFileCommand
	PublishDirectoryCommand = publishcmd.PublishDirectoryCommand
)

var (
	ErrSectionOutOfRange = wiki.ErrSectionOutOfRange
	ErrEmptySourcePath   = convert.ErrEmptySourcePath
	ErrPageNotFound      = publish.ErrPageNotFound
	ErrSpaceRequired     = publishcmd.ErrSpaceRequired
)

func NewDocument() *Document {
	return wiki.NewDocument()
}

func NewConverter(opts ConvertOptions) *Converter {
	return convert.New(opts)
}

// DefaultRules returns the built-in rewrite chain around images.
func DefaultRules(images Rule) Chain {
	return convert.DefaultRules(images)
}

// Convert rewrites text with a default converter.
func Convert(ctx context.Context, text string) (*Result, error) {
	return convert.New(convert.Options{}).Convert(ctx, text)
}

// ConvertFile converts the file at path with a default converter.
func ConvertFile(ctx context.Context, path string) (*Result, error) {
	return convert.New(convert.Options{}).ConvertFile(ctx, path)
}

// Option customises a Module.
type Option = di.Option

// WithPageClient publishes through client instead of the dry run client.
func WithPageClient(client PageClient) Option { return di.WithPageClient(client) }

func WithLoggerProvider(provider LoggerProvider) Option { return di.WithLoggerProvider(provider) }

// WithOutput receives converted markup and the dry run report.
func WithOutput(w io.Writer) Option { return di.WithOutput(w) }

func WithLogWriter(w io.Writer) Option { return di.WithLogWriter(w) }

// WithConvertedHook is called after every converted file.
func WithConvertedHook(fn func(*Source, *Result)) Option { return di.WithConvertedHook(fn) }

// WithPublishedHook is called after every published or skipped page.
func WithPublishedHook(fn func(*Source, *PublishOutcome)) Option { return di.WithPublishedHook(fn) }

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a Module from cfg. Close releases the publish ledger.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Converter returns the converter configured from Config.Convert.
func (m *Module) Converter() *Converter {
	return m.container.Converter()
}

// ConvertFile runs cmd through the convert command handler.
func (m *Module) ConvertFile(ctx context.Context, cmd ConvertFileCommand) error {
	return m.container.ConvertFileHandler().Execute(ctx, cmd)
}

// PublishFile runs cmd through the publish command handler.
func (m *Module) PublishFile(ctx context.Context, cmd PublishFileCommand) error {
	return m.container.PublishFileHandler().Execute(ctx, cmd)
}

// PublishDirectory publishes every source under cmd.Directory.
func (m *Module) PublishDirectory(ctx context.Context, cmd PublishDirectoryCommand) error {
	return m.container.PublishDirectoryHandler().Execute(ctx, cmd)
}

// RegisterCommands subscribes the command handlers to the go-command
// dispatcher.
func (m *Module) RegisterCommands() {
	m.container.RegisterCommands()
}

func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
