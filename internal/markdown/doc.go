// Package markdown loads markdown sources ahead of conversion. It discovers
// files on disk, reads their frontmatter (title, space, labels) and renders an
// HTML preview of the source with goldmark.
package markdown
