package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	getPreferenceSQL = `SELECT value FROM preferences WHERE key = ?`
	putPreferenceSQL = `INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	clearPreferencesSQL = `DELETE FROM preferences`
)

// PreferenceRepository implements ports.Preferences on the preferences table.
type PreferenceRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Get implements ports.Preferences
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, getPreferenceSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, true, nil
}

// Put implements ports.Preferences
func (r *PreferenceRepository) Put(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, putPreferenceSQL, key, value, r.now().UnixMilli()); err != nil {
		return fmt.Errorf("put preference %s: %w", key, err)
	}

	storageLogger().DebugContext(ctx, "Preference saved", "key", key)
	return nil
}

// Clear implements ports.Preferences
func (r *PreferenceRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, clearPreferencesSQL); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}

	storageLogger().InfoContext(ctx, "Preferences restored to defaults")
	return nil
}
