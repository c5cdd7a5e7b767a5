package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"denario/internal/core"
	applog "denario/internal/log"
	"denario/internal/ports"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"
)

// Result describes a recorded expense and the balance that followed it.
type Result struct {
	Expense core.Expense
	Balance decimal.Decimal
}

// Controller sequences the ledger and the balance store for the three user
// actions and keeps the cached balance shown on the display. The cache is
// only assigned after the store accepted the same value.
type Controller struct {
	ledger  ports.LedgerStore
	balance ports.BalanceStore
	display ports.Display
	logger  *applog.Logger

	// serializes user actions; one writer at a time
	actions *semaphore.Weighted

	mu     sync.Mutex
	cached decimal.Decimal
}

func NewController(ledger ports.LedgerStore, balance ports.BalanceStore, display ports.Display, logger *applog.Logger) *Controller {
	if display == nil {
		display = nopDisplay{}
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Controller{
		ledger:  ledger,
		balance: balance,
		display: display,
		logger:  logger.WithComponent(applog.ComponentController),
		actions: semaphore.NewWeighted(1),
	}
}

// Balance returns the cached balance.
func (c *Controller) Balance() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached
}

func (c *Controller) setCached(b decimal.Decimal) {
	c.mu.Lock()
	c.cached = b
	c.mu.Unlock()
}

// Init loads the persisted balance into the cache. The hosting shell calls it
// once at startup, before the first Resume.
func (c *Controller) Init(ctx context.Context) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := c.reloadBalance(ctx); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "Controller initialized",
		applog.FieldOperation, applog.OpInit,
		applog.FieldBalance, c.Balance().String())
	return nil
}

// Resume runs every time the view becomes active: reload the balance, run the
// first-run prompt if needed, then push balance and listing to the display.
func (c *Controller) Resume(ctx context.Context) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := c.reloadBalance(ctx); err != nil {
		return err
	}

	firstRun, err := c.balance.IsFirstRun(ctx)
	if err != nil {
		return c.persistenceFailure(ctx, applog.OpResume, "load first-run flag", err)
	}
	c.logger.DebugContext(ctx, "Resuming",
		applog.FieldOperation, applog.OpResume,
		applog.FieldFirstRun, firstRun)
	if firstRun {
		input, ok, err := c.display.PromptInitialBalance(ctx)
		if err != nil {
			return fmt.Errorf("prompt initial balance: %w", err)
		}
		if !ok {
			// Cancelling accepts zero and moves on
			c.logger.InfoContext(ctx, "Initial balance prompt cancelled", applog.FieldOperation, applog.OpResume)
			input = ""
		}
		if err := c.setInitialBalance(ctx, input); err != nil {
			return err
		}
	}

	c.display.ShowBalance(c.Balance())
	return c.refreshListing(ctx, applog.OpResume)
}

// RecordExpense validates the typed amount, appends it to the ledger and
// subtracts it from the balance.
//
// There is no rollback: if the balance cannot be saved after the ledger
// insert succeeded, the two stores disagree until the next reset. The error
// is logged with both values and returned as a *core.PersistenceError.
func (c *Controller) RecordExpense(ctx context.Context, amountInput, description string) (Result, error) {
	amount, err := core.ParseExpenseAmount(amountInput)
	if err != nil {
		c.logger.WarnContext(ctx, "Expense rejected",
			applog.NewFields().
				WithOperation(applog.OpRecordExpense).
				WithError(err, applog.ErrorTypeInput).
				ToSlice()...)
		return Result{}, err
	}

	release, err := c.acquire(ctx)
	if err != nil {
		return Result{}, err
	}
	defer release()

	expense, err := c.ledger.Insert(ctx, amount, description)
	if err != nil {
		var validationErr *core.ValidationError
		if errors.As(err, &validationErr) {
			c.logger.WarnContext(ctx, "Expense refused by the ledger",
				applog.NewFields().
					WithOperation(applog.OpRecordExpense).
					WithError(err, applog.ErrorTypeValidation).
					ToSlice()...)
			return Result{}, err
		}
		return Result{}, c.persistenceFailure(ctx, applog.OpRecordExpense, "insert expense", err)
	}

	// Subtract what the ledger holds so listing and balance agree
	old := c.Balance()
	next := old.Sub(expense.Amount)
	if err := c.balance.Save(ctx, next); err != nil {
		c.logger.ErrorContext(ctx, "Ledger and balance diverged",
			applog.NewFields().
				WithOperation(applog.OpRecordExpense).
				WithExpense(expense.ID, expense.Amount, expense.Description).
				WithBalance(old, next).
				WithError(err, applog.ErrorTypePersistence).
				ToSlice()...)
		return Result{Expense: expense, Balance: old}, &core.PersistenceError{Op: "save balance", Err: err}
	}
	c.setCached(next)

	c.logger.InfoContext(ctx, "Expense recorded",
		applog.NewFields().
			WithOperation(applog.OpRecordExpense).
			WithExpense(expense.ID, expense.Amount, expense.Description).
			WithBalance(old, next).
			ToSlice()...)

	c.display.ShowBalance(next)
	result := Result{Expense: expense, Balance: next}
	if err := c.refreshListing(ctx, applog.OpRecordExpense); err != nil {
		return result, err
	}
	return result, nil
}

// SetInitialBalance stores the typed starting balance, or zero when the text
// is not a number, and completes the first run. It never rejects input.
func (c *Controller) SetInitialBalance(ctx context.Context, amountInput string) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := c.setInitialBalance(ctx, amountInput); err != nil {
		return err
	}
	c.display.ShowBalance(c.Balance())
	return nil
}

func (c *Controller) setInitialBalance(ctx context.Context, amountInput string) error {
	initial := core.ParseInitialBalance(amountInput)
	if err := c.balance.Save(ctx, initial); err != nil {
		return c.persistenceFailure(ctx, applog.OpInitialBalance, "save balance", err)
	}
	c.setCached(initial)

	if err := c.balance.MarkFirstRunComplete(ctx); err != nil {
		return c.persistenceFailure(ctx, applog.OpInitialBalance, "mark first run complete", err)
	}

	c.logger.InfoContext(ctx, "Initial balance set",
		applog.FieldOperation, applog.OpInitialBalance,
		applog.FieldBalance, initial.String())
	return nil
}

// ResetEverything clears the ledger and restores the balance store to its
// defaults. The first-run prompt comes back on the next Resume.
func (c *Controller) ResetEverything(ctx context.Context) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := c.ledger.ClearAll(ctx); err != nil {
		return c.persistenceFailure(ctx, applog.OpReset, "clear ledger", err)
	}
	if err := c.balance.ResetAll(ctx); err != nil {
		return c.persistenceFailure(ctx, applog.OpReset, "reset balance", err)
	}
	if err := c.reloadBalance(ctx); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Everything reset", applog.FieldOperation, applog.OpReset)

	c.display.ShowBalance(c.Balance())
	return c.refreshListing(ctx, applog.OpReset)
}

func (c *Controller) acquire(ctx context.Context) (func(), error) {
	if err := c.actions.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for previous action: %w", err)
	}
	return func() { c.actions.Release(1) }, nil
}

func (c *Controller) reloadBalance(ctx context.Context) error {
	b, err := c.balance.Load(ctx)
	if err != nil {
		return c.persistenceFailure(ctx, applog.OpResume, "load balance", err)
	}
	c.setCached(b)
	return nil
}

func (c *Controller) refreshListing(ctx context.Context, op string) error {
	expenses, err := c.ledger.ListAll(ctx)
	if err != nil {
		return c.persistenceFailure(ctx, op, "list expenses", err)
	}
	c.logger.DebugContext(ctx, "Listing refreshed",
		applog.FieldOperation, op,
		applog.FieldCount, len(expenses))
	c.display.ShowExpenses(expenses)
	return nil
}

func (c *Controller) persistenceFailure(ctx context.Context, op, what string, err error) error {
	c.logger.ErrorContext(ctx, "Persistence failure",
		applog.NewFields().
			WithOperation(op).
			WithError(err, applog.ErrorTypePersistence).
			ToSlice()...)
	return &core.PersistenceError{Op: what, Err: err}
}

type nopDisplay struct{}

func (nopDisplay) ShowBalance(decimal.Decimal) {}

func (nopDisplay) ShowExpenses([]core.Expense) {}

func (nopDisplay) PromptInitialBalance(context.Context) (string, bool, error) {
	return "", false, nil
}
