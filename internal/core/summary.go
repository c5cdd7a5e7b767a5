package core

import "github.com/shopspring/decimal"

// LedgerSummary is a compact aggregate over a listing of expenses.
type LedgerSummary struct {
	Count int
	Total decimal.Decimal
}

// Summarize totals the given expenses. The result is independent of the
// persisted balance, which is never derived from the ledger.
func Summarize(expenses []Expense) LedgerSummary {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return LedgerSummary{Count: len(expenses), Total: total}
}
