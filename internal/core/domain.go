package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is one ledger record. Records are immutable once stored.
type Expense struct {
	ID          int64
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// Validate checks the storage-boundary rule: amounts may be zero but never negative.
func (e Expense) Validate() error {
	return ValidateStoredAmount(e.Amount)
}

// ValidateStoredAmount rejects negative and non-finite amounts at the
// storage boundary.
func ValidateStoredAmount(amount decimal.Decimal) error {
	_, err := NormalizeStoredAmount(amount)
	return err
}

// NormalizeStoredAmount validates amount and returns the value the ledger
// will actually hold.
func NormalizeStoredAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	stored, ok := StorableAmount(amount)
	if !ok {
		return decimal.Zero, ErrAmountRange
	}
	return stored, nil
}

// String renders the expense the way it appears in the history list,
// e.g. "$1,234.56 - groceries", or just the amount when there is no description.
func (e Expense) String() string {
	amount := FormatUSD(e.Amount)
	if strings.TrimSpace(e.Description) == "" {
		return amount
	}
	return amount + " - " + e.Description
}
