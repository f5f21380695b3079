package wiki

import (
	"strconv"
	"strings"
)

// Defaults applied to zero-valued macro options.
const (
	DefaultCodeTheme     = "Default"
	DefaultCodeFirstLine = 1
	DefaultTOCStyle      = "square"
	DefaultTOCMaxLevel   = 4
	DefaultTOCMinLevel   = 1
	DefaultTOCIndent     = "5px"
	DefaultTOCClass      = "bigpink"
	DefaultTOCType       = "list"
)

// ImageOptions are the optional display parameters of an image token. Zero
// values are omitted from the output.
type ImageOptions struct {
	Title       string
	Align       string
	Border      int
	BorderColor string
	HSpace      int
	VSpace      int
	Width       int
	Height      int
	Alt         string
	Thumbnail   bool
}

// TOCOptions configure the table of contents macro. Zero values fall back to
// the Default* constants; Outline defaults to true when nil.
type TOCOptions struct {
	Printable bool
	Style     string
	MaxLevel  int
	MinLevel  int
	Indent    string
	Class     string
	Exclude   string
	Include   string
	Type      string
	Outline   *bool
}

// CodeBlockOptions configure the code macro. Theme defaults to "Default" and
// FirstLine to 1.
type CodeBlockOptions struct {
	Title       string
	Theme       string
	LineNumbers bool
	Language    string
	FirstLine   int
	Collapse    bool
}

// Image emits an image token for url.
func (d *Document) Image(url string, opts ImageOptions) {
	d.Append(ImageToken(url, opts))
}

// ImageToken renders "!url|title=.., align=..!" without appending it.
func ImageToken(url string, opts ImageOptions) string {
	var b strings.Builder
	b.WriteString("!")
	b.WriteString(url)
	b.WriteString("|")
	if opts.Title != "" {
		b.WriteString("title=" + opts.Title)
	}
	writeParam(&b, "align", opts.Align)
	writeIntParam(&b, "border", opts.Border)
	writeParam(&b, "bordercolor", opts.BorderColor)
	writeIntParam(&b, "hspace", opts.HSpace)
	writeIntParam(&b, "vspace", opts.VSpace)
	writeIntParam(&b, "width", opts.Width)
	writeIntParam(&b, "height", opts.Height)
	writeParam(&b, "alt", opts.Alt)
	if opts.Thumbnail {
		writeParam(&b, "thumbnail", formatBool(true))
	}
	b.WriteString("!")
	return b.String()
}

func writeParam(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(", " + key + "=" + value)
}

func writeIntParam(b *strings.Builder, key string, value int) {
	if value == 0 {
		return
	}
	writeParam(b, key, strconv.Itoa(value))
}

// TOC emits a table of contents macro.
func (d *Document) TOC(opts TOCOptions) {
	d.Append(TOCToken(opts))
}

// TOCToken renders the table of contents macro without appending it.
func TOCToken(opts TOCOptions) string {
	outline := true
	if opts.Outline != nil {
		outline = *opts.Outline
	}

	var b strings.Builder
	b.WriteString("{toc:")
	b.WriteString("printable=" + formatBool(opts.Printable))
	b.WriteString("|style=" + orDefault(opts.Style, DefaultTOCStyle))
	b.WriteString("|maxLevel=" + strconv.Itoa(intOrDefault(opts.MaxLevel, DefaultTOCMaxLevel)))
	b.WriteString("|indent=" + orDefault(opts.Indent, DefaultTOCIndent))
	b.WriteString("|minLevel=" + strconv.Itoa(intOrDefault(opts.MinLevel, DefaultTOCMinLevel)))
	b.WriteString("|class=" + orDefault(opts.Class, DefaultTOCClass))
	if opts.Exclude != "" {
		b.WriteString("|exclude=" + opts.Exclude)
	}
	b.WriteString("|type=" + orDefault(opts.Type, DefaultTOCType))
	b.WriteString("|outline=" + formatBool(outline))
	b.WriteString("|")
	if opts.Include != "" {
		b.WriteString("include=" + opts.Include)
	}
	b.WriteString("}")
	return b.String()
}

// CodeBlock emits a code macro wrapping body verbatim.
func (d *Document) CodeBlock(body string, opts CodeBlockOptions) {
	d.Append(CodeBlockToken(body, opts))
}

// CodeBlockToken renders the code macro without appending it.
func CodeBlockToken(body string, opts CodeBlockOptions) string {
	var b strings.Builder
	b.WriteString("{code:")
	b.WriteString("title=" + opts.Title)
	b.WriteString("|theme=" + orDefault(opts.Theme, DefaultCodeTheme))
	b.WriteString("|linenumbers=" + formatBool(opts.LineNumbers))
	b.WriteString("|language=" + opts.Language)
	b.WriteString("|firstline=" + strconv.Itoa(intOrDefault(opts.FirstLine, DefaultCodeFirstLine)))
	b.WriteString("|collapse=" + formatBool(opts.Collapse))
	b.WriteString("}")
	b.WriteString(body)
	b.WriteString("{code}")
	return b.String()
}

// formatBool renders booleans the way the macro parameters have always been
// written by this package: "True" / "False".
func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
