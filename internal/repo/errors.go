package repo

import (
	"errors"
	"fmt"
)

// Error represents an infrastructure failure inside a storage backend.
//
// Storage failures include:
//   - Connection: the backing connection could not be used
//   - Statement: a statement could not be built, prepared, or executed
//   - Scan: a result row could not be mapped back onto an entity
//   - KeyGen: a fresh identity could not be generated
//
// Absence of a record is never an Error; it is the ok=false case of Get or
// an empty Find result.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Op is the failing operation, e.g. "sqlstore.find".
	Op string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes storage failures.
type ErrorCode string

const (
	// ErrCodeConnection indicates the backing connection failed.
	ErrCodeConnection ErrorCode = "connection"

	// ErrCodeStatement indicates a statement could not be built or executed.
	ErrCodeStatement ErrorCode = "statement"

	// ErrCodeScan indicates a result row could not be mapped to an entity.
	ErrCodeScan ErrorCode = "scan"

	// ErrCodeKeyGen indicates identity generation failed (e.g. a duplicate
	// random token was drawn).
	ErrCodeKeyGen ErrorCode = "keygen"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a storage Error with the given code and operation.
func NewError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// AsError extracts a storage Error from an error chain.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err is a storage Error with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
