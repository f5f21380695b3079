package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Supported ledger drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the ledger database for driver and dsn.
func Open(driver, dsn string) (*bun.DB, error) {
	switch normalizeDriver(driver) {
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("ledger: open sqlite: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("ledger: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("ledger: unsupported driver %q", driver)
	}
}

// EnsureSchema creates the ledger table when missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*recordModel)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledger: create table: %w", err)
	}
	return nil
}

// New returns the repository for driver. The memory driver ignores dsn; SQL
// drivers open the database and create the schema. The returned close func
// releases the connection and is never nil.
func New(ctx context.Context, driver, dsn string) (Repository, func() error, error) {
	noop := func() error { return nil }
	if normalizeDriver(driver) == DriverMemory {
		return NewMemoryRepository(), noop, nil
	}
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, noop, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, noop, err
	}
	return NewBunRepository(db), db.Close, nil
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory", "mem":
		return DriverMemory
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

// Drivers lists the accepted driver names.
func Drivers() []string {
	return []string{DriverMemory, DriverSQLite, DriverPostgres}
}

// IsSupported reports whether driver names a known ledger backend.
func IsSupported(driver string) bool {
	switch normalizeDriver(driver) {
	case DriverMemory, DriverSQLite, DriverPostgres:
		return true
	}
	return false
}

// IsPersistent reports whether driver stores records outside the process.
func IsPersistent(driver string) bool {
	switch normalizeDriver(driver) {
	case DriverSQLite, DriverPostgres:
		return true
	}
	return false
}
