package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-confluence/pkg/testsupport"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Sample Document" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if fm.Space != "DOCS" {
		t.Fatalf("FrontMatter Space mismatch, got %q", fm.Space)
	}
	if fm.Parent != "Handbook" {
		t.Fatalf("FrontMatter Parent mismatch, got %q", fm.Parent)
	}
	if len(fm.Labels) != 2 || fm.Labels[0] != "guides" || fm.Labels[1] != "onboarding" {
		t.Fatalf("FrontMatter Labels mismatch: %#v", fm.Labels)
	}
	if fm.Custom["owner"] != "platform-team" {
		t.Fatalf("FrontMatter Custom owner missing: %#v", fm.Custom)
	}
	if len(body) == 0 || !strings.Contains(string(body), "# Sample Document") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
	if strings.Contains(string(body), "space: DOCS") {
		t.Fatalf("expected frontmatter stripped from body: %q", string(body))
	}
}

func TestParseFrontMatter_NoBlock(t *testing.T) {
	data := []byte("# Plain\n\nbody")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" || fm.Space != "" {
		t.Fatalf("expected empty frontmatter, got %#v", fm)
	}
	if string(body) != string(data) {
		t.Fatalf("expected body to equal input, got %q", string(body))
	}
}

func TestBuildSource(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")
	modified := time.Now().UTC()

	src, err := BuildSource("testdata/basic.md", data, modified)
	if err != nil {
		t.Fatalf("BuildSource: %v", err)
	}

	if src.FilePath != "testdata/basic.md" {
		t.Fatalf("expected FilePath to be set, got %q", src.FilePath)
	}
	if src.Title != "Sample Document" || src.Space != "DOCS" {
		t.Fatalf("unexpected title/space: %q %q", src.Title, src.Space)
	}
	if !src.ModTime.Equal(modified) {
		t.Fatalf("expected ModTime to equal the provided timestamp")
	}
	if len(src.Checksum) != 32 {
		t.Fatalf("expected sha256 checksum, got %d bytes", len(src.Checksum))
	}
}

func TestBuildSource_TitleFallbacks(t *testing.T) {
	src, err := BuildSource("testdata/untitled.md", readFixture(t, "testdata/untitled.md"), time.Time{})
	if err != nil {
		t.Fatalf("BuildSource: %v", err)
	}
	if src.Title != "Derived Title" {
		t.Fatalf("expected heading title, got %q", src.Title)
	}

	src, err = BuildSource("docs/release-notes.md", []byte("no headings here"), time.Time{})
	if err != nil {
		t.Fatalf("BuildSource: %v", err)
	}
	if src.Title != "release-notes" {
		t.Fatalf("expected file name title, got %q", src.Title)
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two"), ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkParser_SafeMode(t *testing.T) {
	parser := NewGoldmarkParser(ParseOptions{SafeMode: true})

	html, err := parser.Parse([]byte("<div class=\"raw\">x</div>"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if strings.Contains(string(html), "<div class=\"raw\">") {
		t.Fatalf("expected raw HTML to be omitted, got %q", string(html))
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := testsupport.LoadFixture(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
