// Package wiki models a Confluence page body written in wiki markup. A
// Document is an ordered buffer of rendered lines plus the macro emitters
// (headings, images, table of contents, code blocks) used to author pages
// programmatically or as the target of the markdown converter.
package wiki

import (
	"fmt"
	"strings"
)

// Heading levels supported by wiki markup.
const (
	H1 = 1
	H2 = 2
	H3 = 3
	H4 = 4
	H5 = 5
	H6 = 6
)

// HorizontalRuleToken is the wiki markup for a horizontal rule.
const HorizontalRuleToken = "----"

// Document is an append-only sequence of wiki markup lines. Lines keep the
// order in which they were appended and are never rewritten in place.
type Document struct {
	lines []string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Append adds a raw, already rendered line.
func (d *Document) Append(line string) {
	d.lines = append(d.lines, line)
}

// Text adds a paragraph of plain text.
func (d *Document) Text(text string) {
	d.Append(text)
}

// Extend appends every line of other, preserving its order. A nil other is a
// no-op.
func (d *Document) Extend(other *Document) {
	if other == nil {
		return
	}
	d.lines = append(d.lines, other.lines...)
}

// Lines returns a copy of the document lines.
func (d *Document) Lines() []string {
	return append([]string(nil), d.lines...)
}

// Len reports the number of lines.
func (d *Document) Len() int {
	return len(d.lines)
}

// Render joins every line with a newline, producing the page body.
func (d *Document) Render() string {
	return strings.Join(d.lines, "\n")
}

// String implements fmt.Stringer.
func (d *Document) String() string {
	return d.Render()
}

// Heading emits "h<level>. <text>". Levels outside 1..6 are clamped.
func (d *Document) Heading(level int, text string) {
	d.Append(HeadingToken(level, text))
}

// HeadingToken renders a heading line without appending it.
func HeadingToken(level int, text string) string {
	level = min(max(level, H1), H6)
	return fmt.Sprintf("h%d. %s", level, text)
}

// HorizontalRule emits a horizontal rule.
func (d *Document) HorizontalRule() {
	d.Append(HorizontalRuleToken)
}

// List emits one bullet line per item. style is the bullet run, "*" for a top
// level item, "**" one level deeper and so on; "-" gives a square bullet list.
func (d *Document) List(items []string, style string) {
	if style == "" {
		style = "*"
	}
	for _, item := range items {
		d.Append(style + " " + item)
	}
}

// NumberedList emits one numbered line per item using style ("#", "##", ...).
func (d *Document) NumberedList(items []string, style string) {
	if style == "" {
		style = "#"
	}
	for _, item := range items {
		d.Append(style + " " + item)
	}
}
