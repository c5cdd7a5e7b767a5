package balance

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"denario/internal/ports"
	"denario/internal/storage"
	"denario/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqlitePreferences(t *testing.T) ports.Preferences {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "balance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo.Preferences()
}

func backends(t *testing.T) map[string]ports.Preferences {
	return map[string]ports.Preferences{
		"memory": memory.NewPreferences(),
		"sqlite": sqlitePreferences(t),
	}
}

func TestStoreDefaults(t *testing.T) {
	for name, prefs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(prefs)

			b, err := s.Load(ctx)
			require.NoError(t, err)
			assert.True(t, b.IsZero())

			first, err := s.IsFirstRun(ctx)
			require.NoError(t, err)
			assert.True(t, first)
		})
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	values := []string{"0", "100", "74.50", "-12.345", "0.001", "-0.005", "123456789012.3456789"}
	for name, prefs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(prefs)
			for _, v := range values {
				want := decimal.RequireFromString(v)
				require.NoError(t, s.Save(ctx, want))
				got, err := s.Load(ctx)
				require.NoError(t, err)
				assert.True(t, want.Equal(got), "save(%s) loaded %s", v, got)
			}
		})
	}
}

func TestStoreFirstRunLifecycle(t *testing.T) {
	for name, prefs := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(prefs)

			require.NoError(t, s.Save(ctx, decimal.NewFromInt(100)))
			require.NoError(t, s.MarkFirstRunComplete(ctx))

			first, err := s.IsFirstRun(ctx)
			require.NoError(t, err)
			assert.False(t, first)

			require.NoError(t, s.ResetAll(ctx))

			first, err = s.IsFirstRun(ctx)
			require.NoError(t, err)
			assert.True(t, first)

			b, err := s.Load(ctx)
			require.NoError(t, err)
			assert.True(t, b.IsZero())
		})
	}
}

func TestStoreRejectsCorruptValues(t *testing.T) {
	ctx := context.Background()
	prefs := memory.NewPreferences()
	s := NewStore(prefs)

	require.NoError(t, prefs.Put(ctx, balanceKey, "lots"))
	_, err := s.Load(ctx)
	assert.Error(t, err)

	require.NoError(t, prefs.Put(ctx, firstRunKey, "maybe"))
	_, err = s.IsFirstRun(ctx)
	assert.Error(t, err)
}

type failingPreferences struct {
	err error
}

func (f failingPreferences) Get(context.Context, string) (string, bool, error) {
	return "", false, f.err
}

func (f failingPreferences) Put(context.Context, string, string) error { return f.err }

func (f failingPreferences) Clear(context.Context) error { return f.err }

func TestStorePropagatesFailures(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk full")
	s := NewStore(failingPreferences{err: cause})

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, s.Save(ctx, decimal.NewFromInt(1)), cause)
	assert.ErrorIs(t, s.MarkFirstRunComplete(ctx), cause)
	assert.ErrorIs(t, s.ResetAll(ctx), cause)
	_, err = s.IsFirstRun(ctx)
	assert.ErrorIs(t, err, cause)
}
