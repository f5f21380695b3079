package ledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists publish records using a Bun-backed database.
type BunRepository struct {
	db *bun.DB
}

var _ Repository = (*BunRepository)(nil)

var errNoDatabase = errors.New("ledger: bun repository requires a database")

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Get returns the record stored under key.
func (r *BunRepository) Get(ctx context.Context, key string) (Record, error) {
	if r.db == nil {
		return Record{}, errNoDatabase
	}
	var model recordModel
	if err := r.db.NewSelect().Model(&model).Where("page_key = ?", key).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, notFound(key)
		}
		return Record{}, err
	}
	return modelToRecord(&model), nil
}

// Upsert creates or updates the record stored under record.Key.
func (r *BunRepository) Upsert(ctx context.Context, record Record) (Record, error) {
	if r.db == nil {
		return Record{}, errNoDatabase
	}

	var current recordModel
	err := r.db.NewSelect().Model(&current).Where("page_key = ?", record.Key).Scan(ctx)
	var existing *Record
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
	} else {
		found := modelToRecord(&current)
		existing = &found
	}

	stored := prepare(record, existing)
	model := modelFromRecord(stored)

	if existing == nil {
		if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
			return Record{}, err
		}
	} else {
		if _, err := r.db.NewUpdate().
			Model(&model).
			Column("space", "title", "page_id", "checksum", "attachments", "version", "page_version", "published_at").
			WherePK().
			Exec(ctx); err != nil {
			return Record{}, err
		}
	}

	return r.Get(ctx, stored.Key)
}

// Delete removes the record stored under key.
func (r *BunRepository) Delete(ctx context.Context, key string) error {
	if r.db == nil {
		return errNoDatabase
	}
	res, err := r.db.NewDelete().Model((*recordModel)(nil)).Where("page_key = ?", key).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return notFound(key)
	}
	return nil
}

// List returns the records of space sorted by key. An empty space lists all.
func (r *BunRepository) List(ctx context.Context, space string) ([]Record, error) {
	if r.db == nil {
		return nil, errNoDatabase
	}
	var models []recordModel
	query := r.db.NewSelect().Model(&models).Order("page_key ASC")
	if space = strings.ToLower(strings.TrimSpace(space)); space != "" {
		query = query.Where("space = ?", space)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(models))
	for i := range models {
		out = append(out, modelToRecord(&models[i]))
	}
	return out, nil
}

type recordModel struct {
	bun.BaseModel `bun:"table:confluence_publish_records"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Key         string    `bun:"page_key,notnull,unique"`
	Space       string    `bun:"space,notnull"`
	Title       string    `bun:"title,notnull"`
	PageID      string    `bun:"page_id"`
	Checksum    string    `bun:"checksum"`
	Attachments string    `bun:"attachments"`
	Version     int       `bun:"version"`
	PageVersion int       `bun:"page_version"`
	PublishedAt time.Time `bun:"published_at"`
}

// attachment names never contain newlines, so they are stored one per line.
const attachmentSeparator = "\n"

func modelFromRecord(record Record) recordModel {
	return recordModel{
		ID:          record.ID,
		Key:         record.Key,
		Space:       record.Space,
		Title:       record.Title,
		PageID:      record.PageID,
		Checksum:    record.Checksum,
		Attachments: strings.Join(record.Attachments, attachmentSeparator),
		Version:     record.Version,
		PageVersion: record.PageVersion,
		PublishedAt: record.PublishedAt,
	}
}

func modelToRecord(model *recordModel) Record {
	if model == nil {
		return Record{}
	}
	var attachments []string
	if model.Attachments != "" {
		attachments = strings.Split(model.Attachments, attachmentSeparator)
	}
	return Record{
		ID:          model.ID,
		Key:         model.Key,
		Space:       model.Space,
		Title:       model.Title,
		PageID:      model.PageID,
		Checksum:    model.Checksum,
		Attachments: attachments,
		Version:     model.Version,
		PageVersion: model.PageVersion,
		PublishedAt: model.PublishedAt.UTC(),
	}
}
