package wiki

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrSectionOutOfRange is returned when a section path index does not exist
// at its level.
var ErrSectionOutOfRange = errors.New("wiki: section index out of range")

const sectionOutOfRangeCode = "SECTION_INDEX_OUT_OF_RANGE"

// DivideIntoSections groups lines at heading depth level+1: a new group starts
// at every "h<level+1>." line, which becomes the first line of its group.
// Group 0 always holds the lines before the first such heading and may be
// empty.
func DivideIntoSections(lines []string, level int) [][]string {
	marker := "h" + strconv.Itoa(level+1) + "."

	sections := [][]string{{}}
	for _, line := range lines {
		if strings.HasPrefix(line, marker) {
			sections = append(sections, []string{})
		}
		last := len(sections) - 1
		sections[last] = append(sections[last], line)
	}
	return sections
}

// Section drills into the document one heading level per path element:
// path[0] selects among the h1 groups, path[1] among the h2 groups inside it,
// and so on. Index 0 at any level is the preamble before the first heading of
// that level. An empty path returns every line.
func (d *Document) Section(path ...int) ([]string, error) {
	lines := d.Lines()
	for level, index := range path {
		sections := DivideIntoSections(lines, level)
		if index < 0 || index >= len(sections) {
			return nil, goerrors.Wrap(
				fmt.Errorf("%w: level %d index %d (available %d)", ErrSectionOutOfRange, level, index, len(sections)),
				goerrors.CategoryValidation,
				"section path out of range",
			).WithTextCode(sectionOutOfRangeCode)
		}
		lines = sections[index]
	}
	return lines, nil
}
