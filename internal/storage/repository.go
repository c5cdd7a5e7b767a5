package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	applog "denario/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the database handle shared by the ledger and the
// preference area. The two never share a transaction.
type SQLiteRepository struct {
	db          *sql.DB
	ledger      *LedgerRepository
	preferences *PreferenceRepository
}

// Option customises a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock replaces the clock used to stamp new expenses and preference writes.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		r.ledger.now = now
		r.preferences.now = now
	}
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := MigrateSchema(dbPath, LedgerSchema())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger schema: %w", err)
	}
	if version != SchemaVersion {
		db.Close()
		return nil, fmt.Errorf("ledger schema at version %d, want %d", version, SchemaVersion)
	}
	storageLogger().Info("Ledger schema ready",
		"schema_version", version,
		applog.FieldDBPath, dbPath)

	repo := &SQLiteRepository{
		db:          db,
		ledger:      &LedgerRepository{db: db, now: time.Now},
		preferences: &PreferenceRepository{db: db, now: time.Now},
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

// Ledger returns the expense table store.
func (r *SQLiteRepository) Ledger() *LedgerRepository {
	return r.ledger
}

// Preferences returns the key-value preference store.
func (r *SQLiteRepository) Preferences() *PreferenceRepository {
	return r.preferences
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// storageLogger tags records with the storage component. It reads the
// process default on every call.
func storageLogger() *slog.Logger {
	return slog.Default().With(applog.FieldComponent, applog.ComponentStorage)
}
