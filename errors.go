package nibard

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrUnsupported is returned when a statement variant or a value/type
	// combination has no rendering.
	ErrUnsupported = errors.New("nibard: unsupported")

	// ErrConversion is returned when a Value cannot be converted to the
	// requested Go type.
	ErrConversion = errors.New("nibard: value conversion failed")

	// ErrNotFound is returned when a query that expects a row returns none.
	ErrNotFound = errors.New("nibard: no rows")
)

// UnsupportedError represents an operation the builder refuses to render
// instead of emitting malformed SQL.
type UnsupportedError struct {
	Op     string // Operation, e.g. "alter table rename column"
	Detail string // Optional detail, e.g. the dialect name
}

// Error returns the error string.
func (e *UnsupportedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("nibard: %s is not supported (%s)", e.Op, e.Detail)
	}
	return fmt.Sprintf("nibard: %s is not supported", e.Op)
}

// Is reports whether the target error matches UnsupportedError.
// This allows errors.Is(err, ErrUnsupported) to return true.
func (e *UnsupportedError) Is(err error) bool {
	return err == ErrUnsupported
}

// NewUnsupportedError returns a new UnsupportedError for the given operation.
func NewUnsupportedError(op, detail string) *UnsupportedError {
	return &UnsupportedError{Op: op, Detail: detail}
}

// IsUnsupported returns true if the error is an UnsupportedError.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupported)
}

// ConversionError represents a failed conversion between a Value variant
// and a Go type.
type ConversionError struct {
	From string // Source kind or Go type
	To   string // Requested kind or Go type
	Err  error  // Optional cause, e.g. an overflow
}

// Error returns the error string.
func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nibard: cannot convert %s to %s: %v", e.From, e.To, e.Err)
	}
	return fmt.Sprintf("nibard: cannot convert %s to %s", e.From, e.To)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ConversionError.
func (e *ConversionError) Is(err error) bool {
	return err == ErrConversion
}

// NewConversionError returns a new ConversionError.
func NewConversionError(from, to string, err error) *ConversionError {
	return &ConversionError{From: from, To: to, Err: err}
}

// IsConversionError returns true if the error is a ConversionError.
func IsConversionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConversionError
	return errors.As(err, &e) || errors.Is(err, ErrConversion)
}

// FormatError wraps a failure of the text sink a statement was rendered into.
type FormatError struct {
	Err error
}

// Error returns the error string.
func (e *FormatError) Error() string {
	return fmt.Sprintf("nibard: writing sql: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError returns true if the error is a FormatError.
func IsFormatError(err error) bool {
	if err == nil {
		return false
	}
	var e *FormatError
	return errors.As(err, &e)
}

// NotFoundError is returned by single-row queries that matched nothing.
type NotFoundError struct {
	table string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.table == "" {
		return "nibard: no rows"
	}
	return fmt.Sprintf("nibard: no rows in %s", e.table)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table that was queried, if known.
func (e *NotFoundError) Table() string {
	return e.table
}

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{table: table}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("nibard: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// QueryError wraps an executor error with the statement that caused it.
type QueryError struct {
	Op    string // "exec" or "query"
	Query string // Rendered SQL text
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	return fmt.Sprintf("nibard: %s %q: %v", e.Op, e.Query, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(op, query string, err error) *QueryError {
	return &QueryError{Op: op, Query: query, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "nibard: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("nibard: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors so errors.Is and errors.As see them.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
