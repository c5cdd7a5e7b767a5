package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var ledgerSchema embed.FS

// SchemaVersion is the version the embedded ledger schema ends at.
const SchemaVersion uint = 2

// LedgerSchema returns the embedded migrations for the expenses and
// preferences tables. Bumping the expenses table is a drop and recreate:
// its down migration discards every stored expense.
func LedgerSchema() fs.FS {
	sub, err := fs.Sub(ledgerSchema, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// MigrateSchema applies the pending migrations in schema to the database at
// dbPath and returns the version the database ends at.
func MigrateSchema(dbPath string, schema fs.FS) (uint, error) {
	// Separate connection so the migrator can close it without touching the main pool
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer conn.Close()

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(schema, ".")
	if err != nil {
		return 0, fmt.Errorf("read schema: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply schema: %w", err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
