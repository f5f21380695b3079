// Package convert rewrites markdown text into Confluence wiki markup one line at
// a time. Inline rewrites are expressed as Rule values applied in a fixed
// order; fenced code blocks are collected by a small scanner and local images
// are queued for upload alongside the resulting document.
package convert

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule rewrites a single line. Rules must leave a bare fence line ("```" plus
// an optional language tag) untouched.
type Rule interface {
	Name() string
	Rewrite(line string) string
}

// RuleFunc adapts a plain function into a Rule.
type RuleFunc struct {
	RuleName string
	Fn       func(line string) string
}

func (r RuleFunc) Name() string { return r.RuleName }

func (r RuleFunc) Rewrite(line string) string {
	if r.Fn == nil {
		return line
	}
	return r.Fn(line)
}

// Chain applies rules in slice order.
type Chain []Rule

// Rewrite runs line through every rule of the chain.
func (c Chain) Rewrite(line string) string {
	for _, rule := range c {
		if rule == nil {
			continue
		}
		line = rule.Rewrite(line)
	}
	return line
}

// Names lists the rule names in application order.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c))
	for _, rule := range c {
		if rule != nil {
			names = append(names, rule.Name())
		}
	}
	return names
}

const (
	RuleEmphasis = "emphasis"
	RuleImage    = "image"
	RuleLink     = "link"
	RuleHeader   = "header"
	RuleList     = "list"
)

const (
	fenceMarker = "```"
	// fencePlaceholder stands in for triple backticks while single backtick
	// spans are rewritten (private-use code points).
	fencePlaceholder = "\uE000\uE001\uE000"
	maxHeaderLevel   = 6

	// maxListDepth bounds the '#' run produced from an ordered marker.
	// Larger markers are left unchanged.
	maxListDepth = 100
)

var (
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	linkPattern       = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	headerPattern     = regexp.MustCompile(`^(#+) ?`)
	bulletPattern     = regexp.MustCompile(`^(\s*)[-*+] `)
	orderedPattern    = regexp.MustCompile(`^(\d+)\. `)
)

// ConvertEmphasis turns inline code spans (`x`) into monospace markup
// ({{x}}). Triple backticks are protected so fence markers never match.
func ConvertEmphasis(line string) string {
	if !strings.Contains(line, "`") {
		return line
	}
	protected := strings.ReplaceAll(line, fenceMarker, fencePlaceholder)
	protected = inlineCodePattern.ReplaceAllString(protected, "{{$1}}")
	return strings.ReplaceAll(protected, fencePlaceholder, fenceMarker)
}

// ConvertLink rewrites [label](target) into [label|target].
func ConvertLink(line string) string {
	return linkPattern.ReplaceAllString(line, "[$1|$2]")
}

// ConvertHeader rewrites a leading run of 1 to 6 '#' plus one optional space
// into "h<n>. ". Only the leading run is consumed, trailing '#' characters
// stay as they are. Longer runs are not headers and are returned unchanged.
func ConvertHeader(line string) string {
	loc := headerPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return line
	}
	level := loc[3] - loc[2]
	if level > maxHeaderLevel {
		return line
	}
	return "h" + strconv.Itoa(level) + ". " + line[loc[1]:]
}

// ConvertList rewrites list item markers. A bullet ("-", "*" or "+") preceded
// by w whitespace characters becomes w/2+1 asterisks. An ordered marker
// "<n>. " becomes n '#' characters: the numeric value drives the depth, not
// the position of the item in its list. "0. x" therefore becomes " x".
func ConvertList(line string) string {
	if loc := bulletPattern.FindStringSubmatchIndex(line); loc != nil {
		width := loc[3] - loc[2]
		line = strings.Repeat("*", width/2+1) + " " + line[loc[1]:]
	}
	if loc := orderedPattern.FindStringSubmatchIndex(line); loc != nil {
		n, err := strconv.Atoi(line[loc[2]:loc[3]])
		if err == nil && n <= maxListDepth {
			line = strings.Repeat("#", n) + " " + line[loc[1]:]
		}
	}
	return line
}

// DefaultRules returns the standard chain: emphasis, image, link, header and
// list. images resolves image references and may be nil to skip that step.
func DefaultRules(images Rule) Chain {
	chain := Chain{
		RuleFunc{RuleName: RuleEmphasis, Fn: ConvertEmphasis},
	}
	if images != nil {
		chain = append(chain, images)
	}
	return append(chain,
		RuleFunc{RuleName: RuleLink, Fn: ConvertLink},
		RuleFunc{RuleName: RuleHeader, Fn: ConvertHeader},
		RuleFunc{RuleName: RuleList, Fn: ConvertList},
	)
}
