// Package core provides the ledger domain types together with money parsing
// and formatting helpers.
//
// Amounts are carried as decimal.Decimal end to end so that a balance that
// was saved comes back bit-for-bit, fractional cents included. Formatting to
// cents only happens at display time.
package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ParseExpenseAmount converts user text into a strictly positive expense amount.
//
// Blank input yields ErrEmptyAmount. Text that is not a decimal number, a
// number that is zero or negative, or one too large for the ledger column
// yields ErrInvalidAmount. The result is already in stored form, see
// StorableAmount.
//
// Examples:
//	ParseExpenseAmount("25.50") -> 25.5, nil
//	ParseExpenseAmount(" 3 ")   -> 3, nil
//	ParseExpenseAmount("")      -> 0, ErrEmptyAmount
//	ParseExpenseAmount("-5")    -> 0, ErrInvalidAmount
//	ParseExpenseAmount("1e400") -> 0, ErrInvalidAmount
func ParseExpenseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, ok := StorableAmount(amount)
	if !ok || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// StorableAmount returns amount as the ledger's REAL column gives it back:
// the shortest decimal that survives a float64 round trip. ok is false when
// amount has no finite float64 value.
func StorableAmount(amount decimal.Decimal) (decimal.Decimal, bool) {
	f := amount.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// ParseInitialBalance never fails: anything that is not a decimal number,
// including blank input, becomes zero. Negative values are kept as typed.
func ParseInitialBalance(s string) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// FormatUSD renders an amount as US dollars rounded to cents,
// e.g. "$1,234.56" or "-$12.35". There is no upper bound on the magnitude.
func FormatUSD(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	_, cents, _ := strings.Cut(rounded.StringFixed(2), ".")
	return fmt.Sprintf("%s$%s.%s", sign, humanize.BigComma(rounded.BigInt()), cents)
}
