// Package xlerr defines the error taxonomy shared by every layer of litexl.
//
// Every fallible operation in the core maps onto one of these sentinels.
// Callers use errors.Is against the sentinels; internal layers wrap with
// Wrap to attach the operation and path/stream name without losing the
// underlying sentinel from errors.Is/As.
package xlerr

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when an open path does not exist.
	ErrFileNotFound = errors.New("file-not-found")
	// ErrIO wraps a read/write failure or truncated input.
	ErrIO = errors.New("io-error")
	// ErrCorrupt signals bad magic, bad version, malformed XML, bad
	// reference syntax, or an inconsistent CFB chain.
	ErrCorrupt = errors.New("corrupt-file")
	// ErrInvalidPassword signals an Agile verifier mismatch, or that
	// encryption was detected but no password was supplied.
	ErrInvalidPassword = errors.New("invalid-password")
	// ErrUnsupported signals an encryption version other than Agile 4.4,
	// or an algorithm/chaining-mode litexl does not implement.
	ErrUnsupported = errors.New("unsupported-feature")
	// ErrOutOfRange signals a row/column index beyond Excel's limits, a
	// negative index, or end-before-start in a range.
	ErrOutOfRange = errors.New("out-of-range")
	// ErrDuplicateName signals a sheet-name collision.
	ErrDuplicateName = errors.New("duplicate-name")
	// ErrEmptyName signals a blank sheet name passed to AddSheet.
	ErrEmptyName = errors.New("empty-name")
	// ErrClosed signals an operation attempted on a closed workbook.
	ErrClosed = errors.New("closed")
	// ErrMapper is reserved for the external annotation-mapper
	// collaborator; opaque to the core.
	ErrMapper = errors.New("mapper-error")
)

// opError carries the originating operation and path/stream name alongside
// a wrapped sentinel, the way the teacher's ReadExcel/WriteExcel annotate
// lower errors with fmt.Errorf("...: %w", err) before re-raising.
type opError struct {
	op   string
	name string
	err  error
}

func (e *opError) Error() string {
	if e.name == "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return fmt.Sprintf("%s %q: %v", e.op, e.name, e.err)
}

func (e *opError) Unwrap() error { return e.err }

// Wrap annotates err with the operation and path/stream name that produced
// it. err should normally be one of the sentinels above, or an error that
// itself wraps one. Wrap(op, name, nil) returns nil.
func Wrap(op, name string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, name: name, err: err}
}
