package publishcmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-confluence/internal/convert"
	"github.com/goliatone/go-confluence/internal/markdown"
	"github.com/goliatone/go-confluence/internal/publish"
	"github.com/goliatone/go-confluence/internal/publish/ledger"
)

func writeFile(t *testing.T, root, name, body string) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "guide.md", "---\ntitle: Getting Started\nspace: ENG\nlabels: [Docs]\n---\n# Getting Started\n![diagram](assets/diagram.png)\n")
	writeFile(t, root, "assets/diagram.png", "png")
	writeFile(t, root, "nested/api.md", "# API Reference\n```go\nfunc main() {}\n```\n")
	return root
}

func newSources(t *testing.T, root string) *markdown.Service {
	t.Helper()
	svc, err := markdown.NewService(markdown.Config{BasePath: root, Pattern: "*.md", Recursive: true}, nil, nil)
	if err != nil {
		t.Fatalf("markdown service: %v", err)
	}
	return svc
}

func TestConvertFileHandlerWritesMarkup(t *testing.T) {
	root := newSite(t)
	var out bytes.Buffer
	var converted *convert.Result

	handler := NewConvertFileHandler(ConvertFileConfig{
		Sources:   newSources(t, root),
		Converter: convert.New(convert.Options{}),
		Out:       &out,
		OnConverted: func(_ *markdown.Source, result *convert.Result) {
			converted = result
		},
	})

	if err := handler.Execute(context.Background(), ConvertFileCommand{Path: "guide.md"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "h1. Getting Started\n!diagram.png!") {
		t.Fatalf("unexpected markup %q", out.String())
	}
	if converted == nil || len(converted.Uploads) != 1 {
		t.Fatalf("expected one queued upload, got %+v", converted)
	}
	if converted.Uploads[0].Path != filepath.Join(root, "assets", "diagram.png") {
		t.Fatalf("unexpected upload path %q", converted.Uploads[0].Path)
	}
}

func TestConvertFileHandlerWritesOutputFile(t *testing.T) {
	root := newSite(t)
	target := filepath.Join(t.TempDir(), "out", "api.wiki")

	handler := NewConvertFileHandler(ConvertFileConfig{
		Sources:   newSources(t, root),
		Converter: convert.New(convert.Options{}),
	})
	if err := handler.Execute(context.Background(), ConvertFileCommand{Path: "nested/api.md", Output: target}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "h1. API Reference\n{code:") || !strings.Contains(string(data), "language=go") {
		t.Fatalf("unexpected output %q", string(data))
	}
}

func TestConvertFileHandlerValidation(t *testing.T) {
	handler := NewConvertFileHandler(ConvertFileConfig{
		Sources:   newSources(t, newSite(t)),
		Converter: convert.New(convert.Options{}),
	})
	err := handler.Execute(context.Background(), ConvertFileCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPublishFileHandlerUsesFrontMatter(t *testing.T) {
	root := newSite(t)
	client := publish.NewDryRunClient(nil)
	repo := ledger.NewMemoryRepository()
	var outcomes []*publish.Outcome

	handler := NewPublishFileHandler(PublishConfig{
		Sources:      newSources(t, root),
		Converter:    convert.New(convert.Options{}),
		Publisher:    publish.NewService(client, repo, publish.Config{SkipUnchanged: true}, nil),
		DefaultSpace: "DEFAULT",
		OnPublished: func(_ *markdown.Source, outcome *publish.Outcome) {
			outcomes = append(outcomes, outcome)
		},
	})

	msg := PublishFileCommand{Path: "guide.md", Labels: []string{"Extra", "docs"}}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}

	updates := client.Updates()
	if len(updates) != 1 {
		t.Fatalf("expected one update, got %d", len(updates))
	}
	if updates[0].PageID != "dry-run:eng:Getting Started" {
		t.Fatalf("unexpected page id %q", updates[0].PageID)
	}
	if got := strings.Join(updates[0].Labels, ","); got != "docs,extra" {
		t.Fatalf("unexpected labels %q", got)
	}
	if size := client.Attachments()["diagram.png"]; size != 3 {
		t.Fatalf("expected diagram.png attached, got %v", client.Attachments())
	}

	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if len(outcomes) != 2 || !outcomes[1].Skipped {
		t.Fatalf("expected unchanged page to be skipped, got %+v", outcomes)
	}
	if len(client.Updates()) != 1 {
		t.Fatalf("expected no second update, got %d", len(client.Updates()))
	}
}

func TestPublishFileHandlerOverridesAndDefaults(t *testing.T) {
	root := newSite(t)
	client := publish.NewDryRunClient(nil)

	handler := NewPublishFileHandler(PublishConfig{
		Sources:      newSources(t, root),
		Converter:    convert.New(convert.Options{}),
		Publisher:    publish.NewService(client, nil, publish.Config{}, nil),
		DefaultSpace: "DOCS",
	})

	if err := handler.Execute(context.Background(), PublishFileCommand{Path: "nested/api.md"}); err != nil {
		t.Fatalf("execute default space: %v", err)
	}
	if err := handler.Execute(context.Background(), PublishFileCommand{Path: "guide.md", Space: "OPS", Title: "Runbook"}); err != nil {
		t.Fatalf("execute override: %v", err)
	}

	updates := client.Updates()
	if len(updates) != 2 {
		t.Fatalf("expected two updates, got %d", len(updates))
	}
	if updates[0].PageID != "dry-run:docs:API Reference" {
		t.Fatalf("unexpected default page id %q", updates[0].PageID)
	}
	if updates[1].PageID != "dry-run:ops:Runbook" {
		t.Fatalf("unexpected override page id %q", updates[1].PageID)
	}
}

func TestPublishFileHandlerRequiresSpace(t *testing.T) {
	root := newSite(t)
	handler := NewPublishFileHandler(PublishConfig{
		Sources:   newSources(t, root),
		Converter: convert.New(convert.Options{}),
		Publisher: publish.NewService(publish.NewDryRunClient(nil), nil, publish.Config{}, nil),
	})

	err := handler.Execute(context.Background(), PublishFileCommand{Path: "nested/api.md"})
	if !errors.Is(err, ErrSpaceRequired) {
		t.Fatalf("expected ErrSpaceRequired, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

type failingPublisher struct {
	fail  string
	calls []string
}

func (p *failingPublisher) Publish(_ context.Context, req publish.Request) (*publish.Outcome, error) {
	p.calls = append(p.calls, req.Title)
	if req.Title == p.fail {
		return nil, errors.New("host unavailable")
	}
	return &publish.Outcome{Key: req.Space + "/" + req.Title}, nil
}

func TestPublishDirectoryHandlerContinuesAfterFailure(t *testing.T) {
	root := newSite(t)
	publisher := &failingPublisher{fail: "Getting Started"}

	handler := NewPublishDirectoryHandler(PublishConfig{
		Sources:   newSources(t, root),
		Converter: convert.New(convert.Options{}),
		Publisher: publisher,
	})

	err := handler.Execute(context.Background(), PublishDirectoryCommand{Directory: ".", Space: "ENG"})
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category, got %v", err)
	}
	if len(publisher.calls) != 2 {
		t.Fatalf("expected both sources attempted, got %v", publisher.calls)
	}
}

func TestPublishDirectoryHandlerNonRecursive(t *testing.T) {
	root := newSite(t)
	client := publish.NewDryRunClient(nil)
	recursive := false

	handler := NewPublishDirectoryHandler(PublishConfig{
		Sources:   newSources(t, root),
		Converter: convert.New(convert.Options{}),
		Publisher: publish.NewService(client, nil, publish.Config{}, nil),
	})

	if err := handler.Execute(context.Background(), PublishDirectoryCommand{Directory: ".", Recursive: &recursive}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(client.Updates()) != 1 {
		t.Fatalf("expected only the top-level source, got %d", len(client.Updates()))
	}
}
