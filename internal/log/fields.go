package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldSessionID   = "session_id"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldExpenseID   = "expense_id"
	FieldExpenseDesc = "expense_description"
	FieldAmount      = "amount"
	FieldBalance     = "balance"
	FieldOldBalance  = "old_balance"
	FieldFirstRun    = "first_run"
	FieldCount       = "count"
	FieldBackend     = "backend"
	FieldDBPath      = "db_path"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentController = "controller"
	ComponentStorage    = "storage"
	ComponentBackend    = "backend"
	ComponentShell      = "shell"
)

// Operations defines standard operation names
const (
	OpInit           = "init"
	OpResume         = "resume"
	OpRecordExpense  = "record_expense"
	OpInitialBalance = "initial_balance"
	OpReset          = "reset"
	OpShutdown       = "shutdown"
	OpStartup        = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeInput         = "input_error"
	ErrorTypeValidation    = "validation_error"
	ErrorTypePersistence   = "persistence_error"
	ErrorTypeConfiguration = "configuration_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error and error type fields
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id int64, amount decimal.Decimal, desc string) LogFields {
	f[FieldExpenseID] = id
	f[FieldAmount] = amount.String()
	f[FieldExpenseDesc] = desc
	return f
}

// WithBalance adds the balance transition
func (f LogFields) WithBalance(old, current decimal.Decimal) LogFields {
	f[FieldOldBalance] = old.String()
	f[FieldBalance] = current.String()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
