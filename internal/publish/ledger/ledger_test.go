package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-confluence/pkg/testsupport"
)

func TestKey(t *testing.T) {
	key, err := Key("ENG", "Getting Started")
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if !strings.HasPrefix(key, "eng/") {
		t.Fatalf("expected key scoped to lower-cased space, got %q", key)
	}
	if strings.Contains(key, " ") {
		t.Fatalf("expected slugged title, got %q", key)
	}

	again, err := Key(" eng ", "  Getting Started ")
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if again != key {
		t.Fatalf("expected stable key, got %q and %q", key, again)
	}
}

func TestKey_Invalid(t *testing.T) {
	for _, tc := range []struct{ space, title string }{
		{"", "Title"},
		{"ENG", ""},
		{"  ", "  "},
	} {
		_, err := Key(tc.space, tc.title)
		if !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Key(%q, %q) expected ErrInvalidKey, got %v", tc.space, tc.title, err)
		}
		if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation category, got %v", err)
		}
	}
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestBunRepository(t *testing.T) {
	exerciseRepository(t, NewBunRepository(newTestDB(t, "ledger_crud")))
}

func TestNew_Memory(t *testing.T) {
	repo, closeFn, err := New(context.Background(), "", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closeFn()
	if _, ok := repo.(*MemoryRepository); !ok {
		t.Fatalf("expected memory repository, got %T", repo)
	}
}

func TestNew_SQLite(t *testing.T) {
	repo, closeFn, err := New(context.Background(), "sqlite3", "file:ledger_new?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closeFn()
	if _, ok := repo.(*BunRepository); !ok {
		t.Fatalf("expected bun repository, got %T", repo)
	}
	if _, err := repo.List(context.Background(), ""); err != nil {
		t.Fatalf("List() on fresh schema error = %v", err)
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	if _, _, err := New(context.Background(), "mongo", "x"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if IsSupported("mongo") || !IsSupported("PG") {
		t.Fatalf("unexpected IsSupported result")
	}
}

func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	key, err := Key("ENG", "Getting Started")
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	_, err = repo.Get(ctx, key)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}

	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created, err := repo.Upsert(ctx, Record{
		Key:         key,
		Space:       "ENG",
		Title:       "Getting Started",
		PageID:      "1001",
		Checksum:    "abc",
		Attachments: []string{"diagram.png", "flow.svg"},
		PageVersion: 7,
		PublishedAt: published,
	})
	if err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	if created.Version != 1 || created.PageVersion != 7 || created.Space != "eng" {
		t.Fatalf("unexpected created record: %+v", created)
	}
	if created.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected generated id")
	}

	updated, err := repo.Upsert(ctx, Record{
		Key:         key,
		Space:       "eng",
		Title:       "Getting Started",
		PageID:      "1001",
		Checksum:    "def",
		PageVersion: 8,
	})
	if err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	if updated.Version != 2 || updated.ID != created.ID {
		t.Fatalf("expected version bump on same id, got %+v", updated)
	}

	fetched, err := repo.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if fetched.Checksum != "def" || fetched.PageVersion != 8 || len(fetched.Attachments) != 0 {
		t.Fatalf("Get() returned %+v", fetched)
	}

	otherKey, _ := Key("OPS", "Runbook")
	if _, err := repo.Upsert(ctx, Record{Key: otherKey, Space: "OPS", Title: "Runbook", Attachments: []string{"a.png"}, PublishedAt: published}); err != nil {
		t.Fatalf("Upsert() other error = %v", err)
	}

	all, err := repo.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("List() all = %d records, err %v", len(all), err)
	}
	ops, err := repo.List(ctx, "OPS")
	if err != nil || len(ops) != 1 || ops[0].Key != otherKey {
		t.Fatalf("List(OPS) = %+v, err %v", ops, err)
	}
	if len(ops[0].Attachments) != 1 || ops[0].Attachments[0] != "a.png" {
		t.Fatalf("expected attachments round trip, got %#v", ops[0].Attachments)
	}
	if !ops[0].PublishedAt.Equal(published) {
		t.Fatalf("expected published time %v, got %v", published, ops[0].PublishedAt)
	}

	if err := repo.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, key); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func newTestDB(t *testing.T, name string) *bun.DB {
	t.Helper()

	sqldb, err := testsupport.NewSQLiteMemoryDB(name)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}
