package convert

import (
	"strings"

	"github.com/goliatone/go-confluence/internal/wiki"
)

// lineCursor hands out input lines one at a time. The converter and the code
// block scanner share it so the scanner can pull body lines directly.
type lineCursor struct {
	lines []string
	pos   int
}

func newLineCursor(text string) *lineCursor {
	return &lineCursor{lines: strings.Split(text, "\n")}
}

func (c *lineCursor) next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

func isFence(line string) bool {
	return strings.HasPrefix(line, fenceMarker)
}

// codeBlock is the state collected between an opening and a closing fence.
type codeBlock struct {
	language string
	body     []string
	closed   bool
}

// scanCodeBlock consumes body lines from cursor until a closing fence or the
// end of input. opening is the (already rewritten) fence line that started
// the block. Body lines are taken verbatim.
func scanCodeBlock(opening string, cursor *lineCursor) codeBlock {
	block := codeBlock{
		language: strings.TrimSpace(strings.ReplaceAll(opening, fenceMarker, "")),
	}
	for {
		line, ok := cursor.next()
		if !ok {
			return block
		}
		if isFence(line) {
			block.closed = true
			return block
		}
		block.body = append(block.body, line)
	}
}

// emit writes the block as a single code macro line.
func (b codeBlock) emit(doc *wiki.Document) {
	doc.CodeBlock(strings.Join(b.body, "\n"), wiki.CodeBlockOptions{
		Language: b.language,
	})
}
