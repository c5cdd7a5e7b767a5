// Package balance persists the running balance and the first-run flag in a
// key-value preference area.
package balance

import (
	"context"
	"fmt"
	"strconv"

	"denario/internal/ports"

	"github.com/shopspring/decimal"
)

const (
	balanceKey  = "currentBalance"
	firstRunKey = "isFirstRun"
)

// Store implements ports.BalanceStore.
type Store struct {
	prefs ports.Preferences
}

func NewStore(prefs ports.Preferences) *Store {
	return &Store{prefs: prefs}
}

// Load returns the persisted balance, or zero if none was ever saved.
func (s *Store) Load(ctx context.Context) (decimal.Decimal, error) {
	raw, ok, err := s.prefs.Get(ctx, balanceKey)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load balance: %w", err)
	}
	if !ok {
		return decimal.Zero, nil
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode balance %q: %w", raw, err)
	}
	return balance, nil
}

// Save overwrites the balance. Negative balances are stored as-is.
func (s *Store) Save(ctx context.Context, balance decimal.Decimal) error {
	if err := s.prefs.Put(ctx, balanceKey, balance.String()); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}

func (s *Store) IsFirstRun(ctx context.Context) (bool, error) {
	raw, ok, err := s.prefs.Get(ctx, firstRunKey)
	if err != nil {
		return false, fmt.Errorf("load first-run flag: %w", err)
	}
	if !ok {
		return true, nil
	}
	firstRun, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("decode first-run flag %q: %w", raw, err)
	}
	return firstRun, nil
}

func (s *Store) MarkFirstRunComplete(ctx context.Context) error {
	if err := s.prefs.Put(ctx, firstRunKey, strconv.FormatBool(false)); err != nil {
		return fmt.Errorf("mark first run complete: %w", err)
	}
	return nil
}

// ResetAll erases the balance and the first-run flag together.
func (s *Store) ResetAll(ctx context.Context) error {
	if err := s.prefs.Clear(ctx); err != nil {
		return fmt.Errorf("reset preferences: %w", err)
	}
	return nil
}
