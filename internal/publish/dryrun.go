package publish

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goliatone/go-confluence/pkg/interfaces"
)

// DryRunClient is a PageClient that performs no remote calls. Every page
// resolves to a synthetic id, attachments are drained and counted, and each
// call is described on the writer.
type DryRunClient struct {
	mu      sync.Mutex
	out     io.Writer
	updates []interfaces.PageUpdate
	files   map[string]int64
	version int
}

var _ interfaces.PageClient = (*DryRunClient)(nil)

// NewDryRunClient returns a client that reports to out. A nil writer discards
// the report.
func NewDryRunClient(out io.Writer) *DryRunClient {
	if out == nil {
		out = io.Discard
	}
	return &DryRunClient{out: out, files: map[string]int64{}}
}

func (c *DryRunClient) PageID(_ context.Context, space, title string) (string, error) {
	id := "dry-run:" + strings.ToLower(strings.TrimSpace(space)) + ":" + strings.TrimSpace(title)
	c.printf("lookup page %q in space %s -> %s\n", title, space, id)
	return id, nil
}

func (c *DryRunClient) AttachFile(_ context.Context, pageID string, attachment interfaces.Attachment) error {
	var size int64
	if attachment.Content != nil {
		n, err := io.Copy(io.Discard, attachment.Content)
		if err != nil {
			return fmt.Errorf("dry run read %s: %w", attachment.Name, err)
		}
		size = n
	}
	c.mu.Lock()
	c.files[attachment.Name] = size
	c.mu.Unlock()
	c.printf("attach %s (%d bytes) to %s\n", attachment.Name, size, pageID)
	return nil
}

func (c *DryRunClient) UpdatePage(_ context.Context, update interfaces.PageUpdate) (*interfaces.PageStatus, error) {
	c.mu.Lock()
	c.updates = append(c.updates, update)
	c.version++
	version := c.version
	c.mu.Unlock()

	c.printf("update page %s (%s, %d bytes, minor=%t, labels=%s)\n",
		update.PageID, update.Representation, len(update.Body), update.MinorEdit, strings.Join(update.Labels, ","))
	return &interfaces.PageStatus{ID: update.PageID, Type: "page", Version: version}, nil
}

// Updates returns the page updates received so far.
func (c *DryRunClient) Updates() []interfaces.PageUpdate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]interfaces.PageUpdate(nil), c.updates...)
}

// Attachments returns the attachment sizes keyed by name.
func (c *DryRunClient) Attachments() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.files))
	for name, size := range c.files {
		out[name] = size
	}
	return out
}

func (c *DryRunClient) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}
