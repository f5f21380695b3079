// Package publish pushes converted documents to a page host: local images are
// attached first, then the page body is replaced with the rendered wiki
// markup. A ledger of published checksums lets unchanged pages be skipped.
package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-confluence/internal/convert"
	"github.com/goliatone/go-confluence/internal/logging"
	"github.com/goliatone/go-confluence/internal/publish/ledger"
	"github.com/goliatone/go-confluence/pkg/interfaces"
)

var (
	// ErrClientRequired is returned when the service has no page client.
	ErrClientRequired = errors.New("publish: page client is required")
	// ErrResultRequired is returned when a request carries no conversion result.
	ErrResultRequired = errors.New("publish: conversion result is required")
	// ErrPageNotFound is returned when the target page does not exist. Pages
	// are updated, never created.
	ErrPageNotFound = errors.New("publish: page not found")
)

const (
	invalidRequestCode   = "PUBLISH_INVALID_REQUEST"
	pageNotFoundCode     = "PUBLISH_PAGE_NOT_FOUND"
	pageLookupFailedCode = "PUBLISH_PAGE_LOOKUP_FAILED"
	attachFailedCode     = "PUBLISH_ATTACH_FAILED"
	updateFailedCode     = "PUBLISH_UPDATE_FAILED"
	ledgerFailedCode     = "PUBLISH_LEDGER_FAILED"
)

// Config controls publish behaviour.
type Config struct {
	// SkipUnchanged skips pages whose checksum matches the ledger.
	SkipUnchanged bool
	MinorEdit     bool
	FullWidth     bool
}

// Request describes one page to publish.
type Request struct {
	Space  string
	Title  string
	Labels []string
	Result *convert.Result
	// MinorEdit and FullWidth override the service defaults when set.
	MinorEdit *bool
	FullWidth *bool
	// Force publishes even when the ledger checksum matches.
	Force bool
}

// Outcome reports what Publish did.
type Outcome struct {
	Key         string
	PageID      string
	Version     int
	Checksum    string
	Attachments []string
	Skipped     bool
	PublishedAt time.Time
}

// AttachmentDigest fingerprints the content of one upload.
type AttachmentDigest struct {
	Name   string
	Digest string
}

// OpenFunc opens an upload for reading; os.Open by default.
type OpenFunc func(path string) (io.ReadCloser, error)

// Service publishes conversion results through a PageClient.
type Service struct {
	client interfaces.PageClient
	ledger ledger.Repository
	cfg    Config
	logger interfaces.Logger
	open   OpenFunc
	now    func() time.Time

	// attached maps pageID/name to the digest last uploaded there, so a
	// retried publish does not send identical attachments again.
	mu       sync.Mutex
	attached map[string]string
}

// Option customises a Service.
type Option func(*Service)

// WithOpener replaces the function used to read uploads.
func WithOpener(open OpenFunc) Option {
	return func(s *Service) {
		if open != nil {
			s.open = open
		}
	}
}

// WithClock overrides the time source used for ledger records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a publish service. A nil ledger disables checksum
// tracking.
func NewService(client interfaces.PageClient, repo ledger.Repository, cfg Config, logger interfaces.Logger, opts ...Option) *Service {
	s := &Service{
		client: client,
		ledger: repo,
		cfg:    cfg,
		logger: logging.OrNoOp(logger),
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		now:      func() time.Time { return time.Now().UTC() },
		attached: map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Publish attaches every pending upload of req.Result to the page and then
// replaces the page body with the rendered document.
func (s *Service) Publish(ctx context.Context, req Request) (*Outcome, error) {
	if s.client == nil {
		return nil, goerrors.Wrap(ErrClientRequired, goerrors.CategoryInternal, "publish service misconfigured").
			WithTextCode(invalidRequestCode)
	}
	if req.Result == nil || req.Result.Document == nil {
		return nil, goerrors.Wrap(ErrResultRequired, goerrors.CategoryBadInput, "nothing to publish").
			WithTextCode(invalidRequestCode)
	}
	key, err := ledger.Key(req.Space, req.Title)
	if err != nil {
		return nil, err
	}

	logger := logging.WithPageContext(s.logger.WithContext(ctx), req.Space, req.Title)
	logger = logging.WithConversionContext(logger, "", req.Result.RunID.String())

	body := req.Result.Render()
	names := uploadNames(req.Result.Uploads)
	digests, err := s.digestUploads(req.Result.Uploads)
	if err != nil {
		return nil, err
	}
	checksum := Checksum(body, digests)

	if s.cfg.SkipUnchanged && !req.Force && s.ledger != nil {
		record, err := s.ledger.Get(ctx, key)
		switch {
		case err == nil && record.Checksum == checksum:
			logger.Info("page unchanged, skipping publish", "page_id", record.PageID, "checksum", checksum)
			return &Outcome{
				Key:         key,
				PageID:      record.PageID,
				Version:     record.PageVersion,
				Checksum:    checksum,
				Attachments: record.Attachments,
				Skipped:     true,
				PublishedAt: record.PublishedAt,
			}, nil
		case err != nil && !errors.Is(err, ledger.ErrRecordNotFound):
			return nil, wrapLedgerError(err)
		}
	}

	pageID, err := s.client.PageID(ctx, req.Space, req.Title)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "page lookup failed").
			WithTextCode(pageLookupFailedCode)
	}
	if strings.TrimSpace(pageID) == "" {
		return nil, goerrors.Wrap(fmt.Errorf("%w: %s/%s", ErrPageNotFound, req.Space, req.Title), goerrors.CategoryNotFound, "target page does not exist").
			WithTextCode(pageNotFoundCode)
	}

	for i, upload := range req.Result.Uploads {
		sent, err := s.attach(ctx, pageID, upload, digests[i].Digest)
		if err != nil {
			return nil, err
		}
		if sent {
			logger.Debug("attachment uploaded", "page_id", pageID, "name", upload.Name)
		} else {
			logger.Debug("attachment already uploaded", "page_id", pageID, "name", upload.Name)
		}
	}

	status, err := s.client.UpdatePage(ctx, interfaces.PageUpdate{
		PageID:         pageID,
		Space:          req.Space,
		Title:          req.Title,
		Body:           body,
		Representation: interfaces.RepresentationWiki,
		Labels:         append([]string(nil), req.Labels...),
		MinorEdit:      boolOr(req.MinorEdit, s.cfg.MinorEdit),
		FullWidth:      boolOr(req.FullWidth, s.cfg.FullWidth),
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "page update failed").
			WithTextCode(updateFailedCode)
	}

	outcome := &Outcome{
		Key:         key,
		PageID:      pageID,
		Checksum:    checksum,
		Attachments: names,
		PublishedAt: s.now(),
	}
	if status != nil {
		outcome.Version = status.Version
	}

	if s.ledger != nil {
		if _, err := s.ledger.Upsert(ctx, ledger.Record{
			Key:         key,
			Space:       req.Space,
			Title:       req.Title,
			PageID:      pageID,
			Checksum:    checksum,
			Attachments: names,
			PageVersion: outcome.Version,
			PublishedAt: outcome.PublishedAt,
		}); err != nil {
			return nil, wrapLedgerError(err)
		}
	}

	logger.Info("page published", "page_id", pageID, "version", outcome.Version, "attachments", len(names))
	return outcome, nil
}

// attach uploads one file unless the same content was already attached to
// the page by this service. It reports whether the file was sent.
func (s *Service) attach(ctx context.Context, pageID string, upload convert.Upload, digest string) (bool, error) {
	key := pageID + "/" + upload.Name
	s.mu.Lock()
	previous, done := s.attached[key]
	s.mu.Unlock()
	if done && previous == digest {
		return false, nil
	}

	file, err := s.open(upload.Path)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryBadInput, "open attachment "+upload.Name).
			WithTextCode(attachFailedCode)
	}
	defer file.Close()

	if err := s.client.AttachFile(ctx, pageID, interfaces.Attachment{Name: upload.Name, Content: file}); err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryExternal, "attach "+upload.Name).
			WithTextCode(attachFailedCode)
	}

	s.mu.Lock()
	s.attached[key] = digest
	s.mu.Unlock()
	return true, nil
}

// digestUploads hashes the content of every upload, in queue order.
func (s *Service) digestUploads(uploads []convert.Upload) ([]AttachmentDigest, error) {
	digests := make([]AttachmentDigest, 0, len(uploads))
	seen := map[string]string{}
	for _, upload := range uploads {
		digest, ok := seen[upload.Path]
		if !ok {
			var err error
			if digest, err = s.digestFile(upload.Path); err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "read attachment "+upload.Name).
					WithTextCode(attachFailedCode)
			}
			seen[upload.Path] = digest
		}
		digests = append(digests, AttachmentDigest{Name: upload.Name, Digest: digest})
	}
	return digests, nil
}

func (s *Service) digestFile(path string) (string, error) {
	file, err := s.open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Checksum fingerprints a page body together with the names and contents of
// its attachments.
func Checksum(body string, attachments []AttachmentDigest) string {
	h := sha256.New()
	_, _ = io.WriteString(h, body)
	for _, attachment := range attachments {
		_, _ = io.WriteString(h, "\x00"+attachment.Name+"\x00"+attachment.Digest)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func uploadNames(uploads []convert.Upload) []string {
	if len(uploads) == 0 {
		return nil
	}
	names := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		names = append(names, upload.Name)
	}
	return names
}

func wrapLedgerError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "publish ledger failure").
		WithTextCode(ledgerFailedCode)
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
