package wiki

// Inline text formatting helpers. They return the decorated text and never
// touch a Document; combine them with Text or Append.

func Strong(text string) string      { return "*" + text + "*" }
func Emphasis(text string) string    { return "_" + text + "_" }
func Citation(text string) string    { return "??" + text + "??" }
func Deleted(text string) string     { return "-" + text + "-" }
func Inserted(text string) string    { return "+" + text + "+" }
func Subscript(text string) string   { return "~" + text + "~" }
func Superscript(text string) string { return "^" + text + "^" }
func Monospaced(text string) string  { return "{{" + text + "}}" }
func BlockQuote(text string) string  { return "bq. " + text }

// Color wraps text in a color macro, e.g. {color:red}text{color}.
func Color(text, color string) string {
	return "{color:" + color + "}" + text + "{color}"
}

// LineBreak is the forced line break token. A single backslash would only
// escape the next character.
func LineBreak() string { return `\\` }
