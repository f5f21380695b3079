package convert

import (
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-confluence/internal/logging"
	"github.com/goliatone/go-confluence/pkg/interfaces"
)

// imagePattern matches ![alt](target) where target ends in a recognised
// image extension. Targets may contain spaces; only svg targets may carry a
// query suffix.
var imagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*?\.(?:jpg|jpeg|png|gif|bmp|svg(?:\?[^)]*)?))\)`)

// Upload is a local file referenced by the converted body that must be
// attached to the page. Name is the basename written into the body.
type Upload struct {
	Name  string
	Path  string
	Width int
}

// StatFunc reports file information for a path; os.Stat by default.
type StatFunc func(name string) (fs.FileInfo, error)

// ImageConfig configures an ImageResolver.
type ImageConfig struct {
	// Width is applied to every local image as "|width=<n>" when positive.
	Width int
	// BaseDir anchors relative image targets. Empty means the working
	// directory.
	BaseDir string
	Logger  interfaces.Logger
	Stat    StatFunc
}

// ImageResolver rewrites image references and records the local files it
// rewrote. A resolver belongs to a single conversion run.
type ImageResolver struct {
	width   int
	baseDir string
	logger  interfaces.Logger
	stat    StatFunc
	uploads []Upload
}

var _ Rule = (*ImageResolver)(nil)

// NewImageResolver builds a resolver with an empty upload queue.
func NewImageResolver(cfg ImageConfig) *ImageResolver {
	stat := cfg.Stat
	if stat == nil {
		stat = os.Stat
	}
	return &ImageResolver{
		width:   cfg.Width,
		baseDir: cfg.BaseDir,
		logger:  logging.OrNoOp(cfg.Logger),
		stat:    stat,
	}
}

func (r *ImageResolver) Name() string { return RuleImage }

// Rewrite resolves every image reference on line. Remote URLs become !url!,
// existing local files become !basename! (plus the configured width) and are
// queued for upload. Anything else is left as written and logged as an error.
func (r *ImageResolver) Rewrite(line string) string {
	return imagePattern.ReplaceAllStringFunc(line, func(match string) string {
		groups := imagePattern.FindStringSubmatch(match)
		if len(groups) < 3 {
			return match
		}
		target := groups[2]

		if isRemoteURL(target) {
			return "!" + target + "!"
		}

		path := r.resolvePath(target)
		if info, err := r.stat(path); err == nil && info.Mode().IsRegular() {
			name := filepath.Base(path)
			r.uploads = append(r.uploads, Upload{Name: name, Path: path, Width: r.width})
			r.logger.Warn("local image detected", "name", name, "path", path)
			return localImageToken(name, r.width)
		}

		r.logger.Error("invalid image reference", "target", target, "alt", groups[1])
		return match
	})
}

// Uploads returns a copy of the queued uploads in discovery order. Repeated
// references to the same file are kept as separate entries.
func (r *ImageResolver) Uploads() []Upload {
	return append([]Upload(nil), r.uploads...)
}

func (r *ImageResolver) resolvePath(target string) string {
	if filepath.IsAbs(target) || r.baseDir == "" {
		return filepath.Clean(target)
	}
	return filepath.Join(r.baseDir, target)
}

// ConvertImage resolves the image references of a single line with a
// throwaway resolver and returns the rewritten line with its uploads.
func ConvertImage(line string, cfg ImageConfig) (string, []Upload) {
	resolver := NewImageResolver(cfg)
	out := resolver.Rewrite(line)
	return out, resolver.Uploads()
}

func localImageToken(name string, width int) string {
	if width > 0 {
		return "!" + name + "|width=" + strconv.Itoa(width) + "!"
	}
	return "!" + name + "!"
}

func isRemoteURL(target string) bool {
	if err := is.RequestURL.Validate(target); err != nil {
		return false
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}
	return parsed.Host != ""
}
