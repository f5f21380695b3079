// Package ledger records what was last published for each page so unchanged
// documents can be skipped. Records live in memory or in a SQL database
// through bun.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// ErrRecordNotFound indicates the page has never been published.
var ErrRecordNotFound = errors.New("ledger: record not found")

// ErrInvalidKey is returned when a space or title cannot form a key.
var ErrInvalidKey = errors.New("ledger: space and title are required")

const (
	recordNotFoundCode = "LEDGER_RECORD_NOT_FOUND"
	invalidKeyCode     = "LEDGER_INVALID_KEY"
)

// Record is the last known published state of a page.
type Record struct {
	ID          uuid.UUID
	Key         string
	Space       string
	Title       string
	PageID      string
	Checksum    string
	Attachments []string
	// Version counts ledger writes for the key.
	Version int
	// PageVersion is the page version the host reported after the update.
	PageVersion int
	PublishedAt time.Time
}

// Repository persists publish records keyed by Key(space, title).
type Repository interface {
	Get(ctx context.Context, key string) (Record, error)
	Upsert(ctx context.Context, record Record) (Record, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, space string) ([]Record, error)
}

// Key builds the ledger key "<space>/<slug(title)>". Spaces are compared
// case-insensitively.
func Key(space, title string) (string, error) {
	space = strings.ToLower(strings.TrimSpace(space))
	title = strings.TrimSpace(title)
	if space == "" || title == "" {
		return "", goerrors.Wrap(ErrInvalidKey, goerrors.CategoryValidation, "ledger key requires space and title").
			WithTextCode(invalidKeyCode)
	}
	normalized, err := slug.Normalize(title)
	if err != nil || normalized == "" {
		return "", goerrors.Wrap(fmt.Errorf("%w: title %q", ErrInvalidKey, title), goerrors.CategoryValidation, "ledger key title cannot be normalized").
			WithTextCode(invalidKeyCode)
	}
	return space + "/" + normalized, nil
}

func notFound(key string) error {
	return goerrors.Wrap(fmt.Errorf("%w: %s", ErrRecordNotFound, key), goerrors.CategoryNotFound, "publish record not found").
		WithTextCode(recordNotFoundCode)
}

func prepare(record Record, existing *Record) Record {
	if existing != nil {
		record.ID = existing.ID
		record.Version = existing.Version + 1
	} else {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		if record.Version == 0 {
			record.Version = 1
		}
	}
	if record.PublishedAt.IsZero() {
		record.PublishedAt = time.Now().UTC()
	}
	record.Space = strings.ToLower(strings.TrimSpace(record.Space))
	record.Attachments = append([]string(nil), record.Attachments...)
	return record
}
