package publishcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-confluence/internal/commands"
	"github.com/goliatone/go-confluence/internal/convert"
	"github.com/goliatone/go-confluence/internal/logging"
	"github.com/goliatone/go-confluence/internal/markdown"
	"github.com/goliatone/go-confluence/internal/publish"
	"github.com/goliatone/go-confluence/pkg/interfaces"
)

const (
	convertOperation   = "convert.file"
	publishOperation   = "publish.file"
	directoryOperation = "publish.directory"

	missingSpaceCode  = "PUBLISH_SPACE_REQUIRED"
	writeFailedCode   = "CONVERT_OUTPUT_FAILED"
	directoryFailCode = "PUBLISH_DIRECTORY_FAILED"
)

// ErrSpaceRequired is returned when neither the command, the source
// frontmatter nor the configuration names a space.
var ErrSpaceRequired = errors.New("publish command: space is required")

var (
	_ command.Commander[ConvertFileCommand]      = (*ConvertFileHandler)(nil)
	_ command.Commander[PublishFileCommand]      = (*PublishFileHandler)(nil)
	_ command.Commander[PublishDirectoryCommand] = (*PublishDirectoryHandler)(nil)
)

// Sources loads markdown sources; *markdown.Service implements it.
type Sources interface {
	Load(ctx context.Context, path string) (*markdown.Source, error)
	LoadDirectory(ctx context.Context, dir string, opts markdown.LoadParams) ([]*markdown.Source, error)
}

// Publisher publishes conversion results; *publish.Service implements it.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (*publish.Outcome, error)
}

// ConvertedFunc receives every successful conversion.
type ConvertedFunc func(src *markdown.Source, result *convert.Result)

// PublishedFunc receives every publish outcome, skipped pages included.
type PublishedFunc func(src *markdown.Source, outcome *publish.Outcome)

// ConvertFileHandler converts a source and writes the rendered markup.
type ConvertFileHandler struct {
	inner *commands.Handler[ConvertFileCommand]
}

// ConvertFileConfig wires a ConvertFileHandler.
type ConvertFileConfig struct {
	Sources   Sources
	Converter *convert.Converter
	// Out receives the markup when a command has no Output path.
	Out         io.Writer
	Logger      interfaces.Logger
	OnConverted ConvertedFunc
}

// NewConvertFileHandler creates a handler bound to the supplied services.
func NewConvertFileHandler(cfg ConvertFileConfig, opts ...commands.HandlerOption[ConvertFileCommand]) *ConvertFileHandler {
	logger := logging.OrNoOp(cfg.Logger)
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}

	exec := func(ctx context.Context, msg ConvertFileCommand) error {
		src, result, err := convertSource(ctx, cfg.Sources, cfg.Converter, msg.Path)
		if err != nil {
			return err
		}
		if err := writeOutput(out, msg.Output, result.Render()); err != nil {
			return err
		}
		logging.WithFields(logger, map[string]any{
			"run_id":  result.RunID.String(),
			"lines":   result.Document.Len(),
			"uploads": len(result.Uploads),
		}).Info("convert.command.file.completed")
		if cfg.OnConverted != nil {
			cfg.OnConverted(src, result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ConvertFileCommand]{
		commands.WithLogger[ConvertFileCommand](logger),
		commands.WithOperation[ConvertFileCommand](convertOperation),
		commands.WithMessageFields(func(msg ConvertFileCommand) map[string]any {
			fields := map[string]any{"path": msg.Path}
			if msg.Output != "" {
				fields["output"] = msg.Output
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ConvertFileHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ConvertFileCommand].
func (h *ConvertFileHandler) Execute(ctx context.Context, msg ConvertFileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishConfig wires the publish handlers.
type PublishConfig struct {
	Sources      Sources
	Converter    *convert.Converter
	Publisher    Publisher
	DefaultSpace string
	Logger       interfaces.Logger
	OnPublished  PublishedFunc
}

// PublishFileHandler converts a source and publishes it.
type PublishFileHandler struct {
	inner *commands.Handler[PublishFileCommand]
}

// NewPublishFileHandler creates a handler bound to the supplied services.
func NewPublishFileHandler(cfg PublishConfig, opts ...commands.HandlerOption[PublishFileCommand]) *PublishFileHandler {
	cfg.Logger = logging.OrNoOp(cfg.Logger)

	exec := func(ctx context.Context, msg PublishFileCommand) error {
		src, err := cfg.Sources.Load(ctx, msg.Path)
		if err != nil {
			return err
		}
		return publishSource(ctx, cfg, src, msg.Space, msg.Title, msg.Labels, msg.Force)
	}

	handlerOpts := []commands.HandlerOption[PublishFileCommand]{
		commands.WithLogger[PublishFileCommand](cfg.Logger),
		commands.WithOperation[PublishFileCommand](publishOperation),
		commands.WithMessageFields(func(msg PublishFileCommand) map[string]any {
			fields := map[string]any{"path": msg.Path}
			if msg.Space != "" {
				fields["space"] = msg.Space
			}
			if msg.Force {
				fields["force"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishFileHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishFileCommand].
func (h *PublishFileHandler) Execute(ctx context.Context, msg PublishFileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishDirectoryHandler publishes every source of a directory. A failing
// source does not stop the others; all failures are returned together.
type PublishDirectoryHandler struct {
	inner *commands.Handler[PublishDirectoryCommand]
}

// NewPublishDirectoryHandler creates a handler bound to the supplied services.
func NewPublishDirectoryHandler(cfg PublishConfig, opts ...commands.HandlerOption[PublishDirectoryCommand]) *PublishDirectoryHandler {
	cfg.Logger = logging.OrNoOp(cfg.Logger)

	exec := func(ctx context.Context, msg PublishDirectoryCommand) error {
		sources, err := cfg.Sources.LoadDirectory(ctx, msg.Directory, markdown.LoadParams{
			Pattern:   msg.Pattern,
			Recursive: msg.Recursive,
		})
		if err != nil {
			return err
		}

		var errs []error
		for _, src := range sources {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := publishSource(ctx, cfg, src, msg.Space, "", nil, msg.Force); err != nil {
				cfg.Logger.Error("publish.command.directory.source_failed", "path", src.FilePath, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", src.FilePath, err))
			}
		}
		cfg.Logger.Info("publish.command.directory.completed", "sources", len(sources), "failed", len(errs))
		if len(errs) > 0 {
			return goerrors.Wrap(errors.Join(errs...), goerrors.CategoryExternal,
				fmt.Sprintf("%d of %d sources failed to publish", len(errs), len(sources))).
				WithTextCode(directoryFailCode)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishDirectoryCommand]{
		commands.WithLogger[PublishDirectoryCommand](cfg.Logger),
		commands.WithOperation[PublishDirectoryCommand](directoryOperation),
		commands.WithMessageFields(func(msg PublishDirectoryCommand) map[string]any {
			return map[string]any{"directory": msg.Directory}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishDirectoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishDirectoryCommand].
func (h *PublishDirectoryHandler) Execute(ctx context.Context, msg PublishDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

func convertSource(ctx context.Context, sources Sources, converter *convert.Converter, path string) (*markdown.Source, *convert.Result, error) {
	src, err := sources.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	result, err := converter.ConvertSource(ctx, string(src.Body), src.FullPath)
	if err != nil {
		return nil, nil, err
	}
	return src, result, nil
}

func publishSource(ctx context.Context, cfg PublishConfig, src *markdown.Source, space, title string, labels []string, force bool) error {
	space = firstNonEmpty(space, src.Space, cfg.DefaultSpace)
	if space == "" {
		return goerrors.Wrap(fmt.Errorf("%w: %s", ErrSpaceRequired, src.FilePath), goerrors.CategoryValidation, "no space for source").
			WithTextCode(missingSpaceCode)
	}

	result, err := cfg.Converter.ConvertSource(ctx, string(src.Body), src.FullPath)
	if err != nil {
		return err
	}

	outcome, err := cfg.Publisher.Publish(ctx, publish.Request{
		Space:  space,
		Title:  firstNonEmpty(title, src.Title),
		Labels: mergeLabels(src.Labels, labels),
		Result: result,
		Force:  force,
	})
	if err != nil {
		return err
	}
	if cfg.OnPublished != nil {
		cfg.OnPublished(src, outcome)
	}
	return nil
}

func writeOutput(out io.Writer, path, body string) error {
	if strings.TrimSpace(path) == "" {
		_, err := io.WriteString(out, body+"\n")
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "create output directory").WithTextCode(writeFailedCode)
		}
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "write converted markup").WithTextCode(writeFailedCode)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func mergeLabels(base, extra []string) []string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, label := range append(append([]string(nil), base...), extra...) {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
