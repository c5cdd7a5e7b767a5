package core

import "fmt"

// InputError reports user-entered amount text that cannot become an expense.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}

// ValidationError reports a value rejected at the storage boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a failure of the underlying durable store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

var (
	ErrEmptyAmount    = &InputError{Reason: "empty amount"}
	ErrInvalidAmount  = &InputError{Reason: "invalid amount"}
	ErrNegativeAmount = &ValidationError{Field: "amount", Reason: "must not be negative"}
	ErrAmountRange    = &ValidationError{Field: "amount", Reason: "must be a finite number"}
)
