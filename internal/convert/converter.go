package convert

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-confluence/internal/logging"
	"github.com/goliatone/go-confluence/internal/wiki"
	"github.com/goliatone/go-confluence/pkg/interfaces"
)

const (
	sourceNotFoundCode   = "SOURCE_NOT_FOUND"
	sourceReadFailedCode = "SOURCE_READ_FAILED"
)

// ErrEmptySourcePath is returned by ConvertFile when no path is given.
var ErrEmptySourcePath = errors.New("convert: source path is required")

// RuleSet builds the rewrite chain for one run around that run's image
// resolver.
type RuleSet func(images Rule) Chain

// Options configures a Converter.
type Options struct {
	// ImageWidth is the display width applied to local images; zero omits it.
	ImageWidth int
	// BaseDir anchors relative image paths for Convert.
	BaseDir string
	Logger  interfaces.Logger
	// Rules overrides the rewrite chain. Defaults to DefaultRules.
	Rules RuleSet
	// Stat overrides the filesystem lookup used for local images.
	Stat StatFunc
}

// Result is the outcome of one conversion run.
type Result struct {
	Document *wiki.Document
	// Uploads lists local images referenced by the body, in order of
	// appearance, duplicates included.
	Uploads []Upload
	RunID   uuid.UUID
}

// Render returns the rendered page body.
func (r *Result) Render() string {
	if r == nil || r.Document == nil {
		return ""
	}
	return r.Document.Render()
}

// Converter turns markdown text into wiki markup. It keeps no per-run state
// and may be shared between goroutines.
type Converter struct {
	opts   Options
	logger interfaces.Logger
}

// New constructs a Converter.
func New(opts Options) *Converter {
	if opts.Rules == nil {
		opts.Rules = DefaultRules
	}
	return &Converter{
		opts:   opts,
		logger: logging.OrNoOp(opts.Logger),
	}
}

// Convert rewrites text line by line. Problems with individual lines are
// logged and never abort the run; only context cancellation returns an error.
func (c *Converter) Convert(ctx context.Context, text string) (*Result, error) {
	return c.run(ctx, text, c.opts.BaseDir, "")
}

// ConvertFile reads a markdown file and converts it, resolving relative image
// paths against the file's directory.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, goerrors.Wrap(ErrEmptySourcePath, goerrors.CategoryBadInput, "markdown source path missing").
			WithTextCode(sourceNotFoundCode)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerrors.Wrap(err, goerrors.CategoryNotFound, "markdown source not found").
				WithTextCode(sourceNotFoundCode)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "read markdown source").
			WithTextCode(sourceReadFailedCode)
	}
	return c.ConvertSource(ctx, string(raw), path)
}

// ConvertSource converts text that was read from sourcePath, resolving
// relative image paths against the directory of sourcePath. Use it when the
// caller already stripped metadata such as frontmatter from the file.
func (c *Converter) ConvertSource(ctx context.Context, text, sourcePath string) (*Result, error) {
	baseDir := c.opts.BaseDir
	if sourcePath != "" {
		baseDir = filepath.Dir(sourcePath)
	}
	return c.run(ctx, text, baseDir, sourcePath)
}

func (c *Converter) run(ctx context.Context, text, baseDir, sourcePath string) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.New()
	logger := logging.WithConversionContext(c.logger.WithContext(ctx), sourcePath, runID.String())

	images := NewImageResolver(ImageConfig{
		Width:   c.opts.ImageWidth,
		BaseDir: baseDir,
		Logger:  logger,
		Stat:    c.opts.Stat,
	})
	rules := c.opts.Rules(images)

	doc := wiki.NewDocument()
	cursor := newLineCursor(text)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, ok := cursor.next()
		if !ok {
			break
		}

		line = rules.Rewrite(line)
		if !isFence(line) {
			doc.Text(line)
			continue
		}

		block := scanCodeBlock(line, cursor)
		if !block.closed {
			logger.Warn("code block was not closed properly", "language", block.language, "lines", len(block.body))
		}
		block.emit(doc)
	}

	result := &Result{
		Document: doc,
		Uploads:  images.Uploads(),
		RunID:    runID,
	}
	logger.Debug("conversion completed", "lines", doc.Len(), "uploads", len(result.Uploads))
	return result, nil
}
