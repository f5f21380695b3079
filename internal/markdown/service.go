package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-confluence/internal/logging"
	"github.com/goliatone/go-confluence/pkg/interfaces"
)

// Config controls how the markdown service discovers and previews sources.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Parser    ParseOptions
}

// Service loads markdown sources from a directory tree.
type Service struct {
	cfg    Config
	parser Parser
	loader *Loader
	logger interfaces.Logger
}

// NewService constructs a markdown service rooted at cfg.BasePath. When parser
// is nil a GoldmarkParser with cfg.Parser defaults is used.
func NewService(cfg Config, parser Parser, logger interfaces.Logger) (*Service, error) {
	basePath, filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	cfg.BasePath = basePath

	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	return &Service{
		cfg:    cfg,
		parser: parser,
		loader: NewLoader(filesystem, LoaderConfig{
			BasePath:  basePath,
			Pattern:   cfg.Pattern,
			Recursive: cfg.Recursive,
		}),
		logger: logging.OrNoOp(logger),
	}, nil
}

// BasePath returns the absolute directory the service reads from.
func (s *Service) BasePath() string {
	return s.cfg.BasePath
}

// Load reads a single source relative to the base path.
func (s *Service) Load(ctx context.Context, path string) (*Source, error) {
	src, err := s.loader.LoadFile(ctx, s.normalisePath(path))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("markdown source loaded", "path", src.FilePath, "title", src.Title)
	return src, nil
}

// LoadDirectory reads every source within dir.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts LoadParams) ([]*Source, error) {
	sources, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), opts)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("markdown directory loaded", "dir", dir, "count", len(sources))
	return sources, nil
}

// Preview renders markdown into HTML.
func (s *Service) Preview(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

// PreviewSource renders the body of src into HTML.
func (s *Service) PreviewSource(ctx context.Context, src *Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("markdown service: source is nil")
	}
	html, err := s.Preview(ctx, src.Body, ParseOptions{})
	if err != nil {
		return nil, fmt.Errorf("markdown preview %s: %w", src.FilePath, err)
	}
	return html, nil
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func mergeParseOptions(base, override ParseOptions) ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	return result
}

func prepareFilesystem(basePath string) (string, fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return "", nil, fmt.Errorf("markdown service: resolve base path %s: %w", basePath, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return abs, os.DirFS(abs), nil
}
