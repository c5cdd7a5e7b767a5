package ports

import (
	"context"

	"denario/internal/core"

	"github.com/shopspring/decimal"
)

// Ports for outbound adapters.
type (
	// LedgerStore is the durable, append-only list of expenses.
	LedgerStore interface {
		// Insert stores a new expense and returns it with its assigned id and timestamp.
		Insert(ctx context.Context, amount decimal.Decimal, description string) (core.Expense, error)
		// ListAll returns every expense, most recently inserted first.
		ListAll(ctx context.Context) ([]core.Expense, error)
		// ClearAll removes every expense irreversibly.
		ClearAll(ctx context.Context) error
	}

	// Preferences is a small durable key-value area.
	Preferences interface {
		Get(ctx context.Context, key string) (value string, ok bool, err error)
		// Put is durable once it returns.
		Put(ctx context.Context, key, value string) error
		// Clear restores factory defaults by removing every key.
		Clear(ctx context.Context) error
	}

	// BalanceStore holds the running balance and the first-run flag.
	BalanceStore interface {
		Load(ctx context.Context) (decimal.Decimal, error)
		Save(ctx context.Context, balance decimal.Decimal) error
		IsFirstRun(ctx context.Context) (bool, error)
		MarkFirstRunComplete(ctx context.Context) error
		ResetAll(ctx context.Context) error
	}
)

// Display is the surface the controller renders to.
type Display interface {
	ShowBalance(balance decimal.Decimal)
	// ShowExpenses receives the full listing, newest first.
	ShowExpenses(expenses []core.Expense)
	// PromptInitialBalance asks the user for a starting balance.
	// ok is false when the user dismissed the prompt.
	PromptInitialBalance(ctx context.Context) (input string, ok bool, err error)
}
