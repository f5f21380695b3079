package markdown

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"maps"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block of a markdown source.
type FrontMatter struct {
	Title  string
	Space  string
	Parent string
	Labels []string
	Custom map[string]any
}

// Source is a markdown file ready for conversion.
type Source struct {
	// FilePath is slash separated and relative to the loader base path.
	FilePath string
	// FullPath locates the file on disk; image references resolve next to it.
	FullPath    string
	FrontMatter FrontMatter
	Title       string
	Space       string
	Labels      []string
	Body        []byte
	Checksum    []byte
	ModTime     time.Time
}

// ParseFrontMatter extracts metadata and the markdown body from source.
// Sources without a frontmatter block return an empty FrontMatter and the
// whole input as body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return FrontMatter{
		Title:  strings.TrimSpace(meta.Title),
		Space:  strings.TrimSpace(meta.Space),
		Parent: strings.TrimSpace(meta.Parent),
		Labels: normalizeLabels(meta.Labels),
		Custom: cloneMap(meta.Custom),
	}, body, nil
}

// BuildSource assembles a Source from a path, its raw content and its
// modification time. The title falls back to the first level one heading and
// then to the file name.
func BuildSource(path string, source []byte, modified time.Time) (*Source, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(source)
	return &Source{
		FilePath:    filepath.ToSlash(path),
		FrontMatter: fm,
		Title:       resolveTitle(fm.Title, body, path),
		Space:       fm.Space,
		Labels:      append([]string(nil), fm.Labels...),
		Body:        body,
		Checksum:    sum[:],
		ModTime:     modified,
	}, nil
}

type frontMatterEnvelope struct {
	Title  string         `yaml:"title"`
	Space  string         `yaml:"space"`
	Parent string         `yaml:"parent"`
	Labels []string       `yaml:"labels"`
	Custom map[string]any `yaml:",inline"`
}

func resolveTitle(title string, body []byte, path string) string {
	if title != "" {
		return title
	}
	for _, line := range strings.Split(string(body), "\n") {
		if heading, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			if heading = strings.TrimSpace(heading); heading != "" {
				return heading
			}
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func normalizeLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	seen := map[string]struct{}{}
	for _, label := range labels {
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

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}
	return maps.Clone(input)
}
