package interfaces

import (
	"context"
	"io"
)

// RepresentationWiki is the body representation used for wiki markup pages.
const RepresentationWiki = "wiki"

// PageClient is the contract the publish workflow expects from the remote page
// host. Implementations wrap the host's REST API; the converter never talks to
// the network directly.
type PageClient interface {
	// PageID resolves the identifier of the page titled title in space. It
	// returns an empty identifier and no error when the page does not exist.
	PageID(ctx context.Context, space, title string) (string, error)
	// UpdatePage replaces the body of an existing page.
	UpdatePage(ctx context.Context, update PageUpdate) (*PageStatus, error)
	// AttachFile uploads content as an attachment named name on the page.
	AttachFile(ctx context.Context, pageID string, attachment Attachment) error
}

// PageUpdate carries the fields sent to the host when updating a page body.
type PageUpdate struct {
	PageID         string
	Space          string
	Title          string
	Body           string
	Representation string
	Labels         []string
	MinorEdit      bool
	FullWidth      bool
}

// PageStatus is the host's answer to a page update.
type PageStatus struct {
	ID      string
	Type    string
	Version int
}

// Attachment is a binary file uploaded alongside a page. Content is owned by
// the caller and closed by it after AttachFile returns.
type Attachment struct {
	Name    string
	Content io.Reader
}
