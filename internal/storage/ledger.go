package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"denario/internal/core"
	applog "denario/internal/log"

	"github.com/shopspring/decimal"
)

const (
	insertExpenseSQL = `INSERT INTO expenses (amount, description, created_at) VALUES (?, ?, ?)`
	listExpensesSQL  = `SELECT id, amount, description, created_at FROM expenses ORDER BY id DESC`
	clearExpensesSQL = `DELETE FROM expenses`
)

// LedgerRepository implements ports.LedgerStore on the expenses table.
type LedgerRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Insert implements ports.LedgerStore
func (r *LedgerRepository) Insert(ctx context.Context, amount decimal.Decimal, description string) (core.Expense, error) {
	amount, err := core.NormalizeStoredAmount(amount)
	if err != nil {
		return core.Expense{}, err
	}

	createdAt := r.now().UnixMilli()
	res, err := r.db.ExecContext(ctx, insertExpenseSQL, amount.InexactFloat64(), description, createdAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("read expense id: %w", err)
	}

	storageLogger().InfoContext(ctx, "Expense saved to SQLite",
		applog.FieldExpenseID, id,
		applog.FieldExpenseDesc, description,
		applog.FieldAmount, amount.String(),
		"created_at", createdAt)

	return core.Expense{
		ID:          id,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.UnixMilli(createdAt),
	}, nil
}

// ListAll implements ports.LedgerStore
func (r *LedgerRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, listExpensesSQL)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		var (
			id          int64
			amount      float64
			description sql.NullString
			createdAt   int64
		)
		if err := rows.Scan(&id, &amount, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if math.IsInf(amount, 0) || math.IsNaN(amount) {
			return nil, fmt.Errorf("expense %d: %w", id, core.ErrAmountRange)
		}
		expenses = append(expenses, core.Expense{
			ID:          id,
			Amount:      decimal.NewFromFloat(amount),
			Description: description.String,
			CreatedAt:   time.UnixMilli(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// ClearAll implements ports.LedgerStore
func (r *LedgerRepository) ClearAll(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, clearExpensesSQL)
	if err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		storageLogger().WarnContext(ctx, "Could not count cleared expenses", applog.FieldError, err)
	}

	storageLogger().InfoContext(ctx, "Ledger cleared", applog.FieldCount, removed)
	return nil
}
