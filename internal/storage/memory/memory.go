package memory

import (
	"context"
	"sync"
	"time"

	"denario/internal/core"

	"github.com/shopspring/decimal"
)

// Ledger keeps expenses in process memory. Nothing survives a restart.
type Ledger struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
	now    func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{nextID: 1, now: time.Now}
}

// NewLedgerWithClock is NewLedger with a fixed time source.
func NewLedgerWithClock(now func() time.Time) *Ledger {
	l := NewLedger()
	l.now = now
	return l
}

// Insert implements ports.LedgerStore
func (l *Ledger) Insert(_ context.Context, amount decimal.Decimal, description string) (core.Expense, error) {
	amount, err := core.NormalizeStoredAmount(amount)
	if err != nil {
		return core.Expense{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e := core.Expense{
		ID:          l.nextID,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.UnixMilli(l.now().UnixMilli()),
	}
	l.nextID++
	l.items = append(l.items, e)
	return e, nil
}

// ListAll implements ports.LedgerStore
func (l *Ledger) ListAll(_ context.Context) ([]core.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Expense, 0, len(l.items))
	for i := len(l.items) - 1; i >= 0; i-- {
		out = append(out, l.items[i])
	}
	return out, nil
}

// ClearAll implements ports.LedgerStore. Ids keep increasing afterwards.
func (l *Ledger) ClearAll(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	return nil
}

// Preferences is an in-memory key-value area.
type Preferences struct {
	mu     sync.Mutex
	values map[string]string
}

func NewPreferences() *Preferences {
	return &Preferences{values: map[string]string{}}
}

// Get implements ports.Preferences
func (p *Preferences) Get(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok, nil
}

// Put implements ports.Preferences
func (p *Preferences) Put(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

// Clear implements ports.Preferences
func (p *Preferences) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = map[string]string{}
	return nil
}
