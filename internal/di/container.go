package di

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-confluence/internal/commands"
	publishcmd "github.com/goliatone/go-confluence/internal/commands/publish"
	"github.com/goliatone/go-confluence/internal/convert"
	"github.com/goliatone/go-confluence/internal/logging"
	"github.com/goliatone/go-confluence/internal/logging/console"
	"github.com/goliatone/go-confluence/internal/logging/gologger"
	"github.com/goliatone/go-confluence/internal/markdown"
	"github.com/goliatone/go-confluence/internal/publish"
	"github.com/goliatone/go-confluence/internal/publish/ledger"
	"github.com/goliatone/go-confluence/internal/runtimeconfig"
	"github.com/goliatone/go-confluence/pkg/interfaces"
)

type subscription interface {
	Unsubscribe()
}

// Container wires the converter, the source loader, the publish workflow and
// the command handlers from one Config.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer
	out            io.Writer

	client      interfaces.PageClient
	dryRun      *publish.DryRunClient
	ledgerRepo  ledger.Repository
	closeLedger func() error

	converter *convert.Converter
	markdown  *markdown.Service
	publisher *publish.Service

	onConverted publishcmd.ConvertedFunc
	onPublished publishcmd.PublishedFunc

	convertHandler   *publishcmd.ConvertFileHandler
	publishHandler   *publishcmd.PublishFileHandler
	directoryHandler *publishcmd.PublishDirectoryHandler
	subscriptions    []subscription
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithLogWriter redirects the console provider. Defaults to stderr.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		if w != nil {
			c.logWriter = w
		}
	}
}

// WithOutput sets the writer that receives converted markup and the dry run
// report. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Container) {
		if w != nil {
			c.out = w
		}
	}
}

// WithPageClient publishes through client. Without one the container uses a
// DryRunClient that reports to the output writer.
func WithPageClient(client interfaces.PageClient) Option {
	return func(c *Container) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLedger overrides the ledger opened from Config.Ledger.
func WithLedger(repo ledger.Repository) Option {
	return func(c *Container) {
		if repo != nil {
			c.ledgerRepo = repo
		}
	}
}

// WithConvertedHook is called after every converted file command.
func WithConvertedHook(fn publishcmd.ConvertedFunc) Option {
	return func(c *Container) {
		c.onConverted = fn
	}
}

// WithPublishedHook is called after every published or skipped page.
func WithPublishedHook(fn publishcmd.PublishedFunc) Option {
	return func(c *Container) {
		c.onPublished = fn
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:    cfg,
		logWriter: os.Stderr,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureLedger(ctx); err != nil {
		return nil, err
	}
	if err := c.configureServices(); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.configureCommands()

	logging.CommandsLogger(c.loggerProvider).Debug("container.configured",
		"ledger", c.Config.Ledger.Driver,
		"dry_run", c.dryRun != nil,
		"content_dir", c.markdown.BasePath(),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{Writer: c.logWriter}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureLedger(ctx context.Context) error {
	if c.ledgerRepo != nil {
		return nil
	}
	repo, closer, err := ledger.New(ctx, c.Config.Ledger.Driver, c.Config.Ledger.DSN)
	if err != nil {
		return fmt.Errorf("di: open ledger: %w", err)
	}
	c.ledgerRepo = repo
	c.closeLedger = closer
	return nil
}

func (c *Container) configureServices() error {
	c.converter = convert.New(convert.Options{
		ImageWidth: c.Config.Convert.ImageWidth,
		BaseDir:    c.Config.Convert.BaseDir,
		Logger:     logging.ConvertLogger(c.loggerProvider),
	})

	parser := c.Config.Markdown.Parser
	svc, err := markdown.NewService(markdown.Config{
		BasePath:  c.Config.Markdown.ContentDir,
		Pattern:   c.Config.Markdown.Pattern,
		Recursive: c.Config.Markdown.Recursive,
		Parser: markdown.ParseOptions{
			Extensions: append([]string(nil), parser.Extensions...),
			HardWraps:  parser.HardWraps,
			SafeMode:   parser.SafeMode,
		},
	}, nil, logging.MarkdownLogger(c.loggerProvider))
	if err != nil {
		return fmt.Errorf("di: markdown service: %w", err)
	}
	c.markdown = svc

	if c.client == nil {
		c.dryRun = publish.NewDryRunClient(c.out)
		c.client = c.dryRun
	}
	c.publisher = publish.NewService(c.client, c.ledgerRepo, publish.Config{
		SkipUnchanged: c.Config.Publish.SkipUnchanged,
		MinorEdit:     c.Config.Publish.MinorEdit,
		FullWidth:     c.Config.Publish.FullWidth,
	}, logging.PublishLogger(c.loggerProvider))
	return nil
}

func (c *Container) configureCommands() {
	logger := commands.CommandLogger(c.loggerProvider, "publish")

	c.convertHandler = publishcmd.NewConvertFileHandler(publishcmd.ConvertFileConfig{
		Sources:     c.markdown,
		Converter:   c.converter,
		Out:         c.out,
		Logger:      logger,
		OnConverted: c.onConverted,
	})

	publishCfg := publishcmd.PublishConfig{
		Sources:      c.markdown,
		Converter:    c.converter,
		Publisher:    c.publisher,
		DefaultSpace: c.Config.Publish.Space,
		Logger:       logger,
		OnPublished:  c.onPublished,
	}
	c.publishHandler = publishcmd.NewPublishFileHandler(publishCfg)
	c.directoryHandler = publishcmd.NewPublishDirectoryHandler(publishCfg,
		commands.WithTimeout[publishcmd.PublishDirectoryCommand](0))
}

// RegisterCommands subscribes the command handlers to the go-command
// dispatcher. Publish commands are retried Config.Publish.Retries times; the
// publish service skips attachments a failed attempt already uploaded.
func (c *Container) RegisterCommands() {
	if len(c.subscriptions) > 0 {
		return
	}
	retries := runner.WithMaxRetries(c.Config.Publish.Retries)
	c.subscriptions = append(c.subscriptions,
		dispatcher.SubscribeCommand(c.convertHandler),
		dispatcher.SubscribeCommand(c.publishHandler, retries),
		dispatcher.SubscribeCommand(c.directoryHandler),
	)
}

// Close unsubscribes the command handlers and releases the ledger.
func (c *Container) Close() error {
	for _, sub := range c.subscriptions {
		sub.Unsubscribe()
	}
	c.subscriptions = nil

	var err error
	if c.closeLedger != nil {
		err = c.closeLedger()
		c.closeLedger = nil
	}
	return err
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) Converter() *convert.Converter { return c.converter }

func (c *Container) MarkdownService() *markdown.Service { return c.markdown }

func (c *Container) PublishService() *publish.Service { return c.publisher }

func (c *Container) Ledger() ledger.Repository { return c.ledgerRepo }

// DryRunClient returns the recording client, or nil when a real PageClient
// was supplied.
func (c *Container) DryRunClient() *publish.DryRunClient { return c.dryRun }

func (c *Container) ConvertFileHandler() *publishcmd.ConvertFileHandler { return c.convertHandler }

func (c *Container) PublishFileHandler() *publishcmd.PublishFileHandler { return c.publishHandler }

func (c *Container) PublishDirectoryHandler() *publishcmd.PublishDirectoryHandler {
	return c.directoryHandler
}
