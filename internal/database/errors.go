package database

import (
	"errors"
	"fmt"
)

// ErrNoRows is returned by lookups that require a record to exist.
var ErrNoRows = errors.New("database: no rows in result set")

// ConfigurationError means the adapter could not be built from the handle it was given.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "database: configuration error: " + e.Reason
}

// QueryError is a statement rejected by the engine, or rejected before reaching it.
type QueryError struct {
	SQL    string
	Params []any
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database: query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// TransactionError is a failure after a transaction began. When the rollback
// also failed both errors are kept.
type TransactionError struct {
	Cause       error
	RollbackErr error
}

func (e *TransactionError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("database: transaction failed: %v (rollback failed: %v)", e.Cause, e.RollbackErr)
	}
	return fmt.Sprintf("database: transaction failed: %v", e.Cause)
}

func (e *TransactionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.RollbackErr != nil {
		errs = append(errs, e.RollbackErr)
	}
	return errs
}

// SerializationError is a composite column that could not be decoded. Callers
// recover from it per record.
type SerializationError struct {
	Column string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("database: cannot decode column %s: %v", e.Column, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
