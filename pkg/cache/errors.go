package cache

import "fmt"

// StoreError represents a failure of a store operation against one physical
// table.
type StoreError struct {
	Op    string // Operation that failed ("scan", "delete", "ping", "lease")
	Table string // Physical table involved, if any
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("cache store error [op=%s, table=%s]: %v", e.Op, e.Table, e.Cause)
	}
	return fmt.Sprintf("cache store error [op=%s]: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, table string, cause error) *StoreError {
	return &StoreError{
		Op:    op,
		Table: table,
		Cause: cause,
	}
}
