// Package errors defines the validation error taxonomy shared by the
// dataset, selection, transform, and stats packages. Every failure the
// core reports is deterministic (bad input, not a transient fault), so
// errors carry the operation name and the offending column or index
// instead of retry hints.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code identifies a category of validation failure.
type Code string

const (
	// CodeParse indicates malformed index/range text.
	CodeParse Code = "PARSE_ERROR"
	// CodeSelection indicates a row/column selection outside the valid
	// range, or one that would produce an empty result.
	CodeSelection Code = "SELECTION_ERROR"
	// CodeOutOfBounds indicates a cell coordinate outside the dataset.
	CodeOutOfBounds Code = "OUT_OF_BOUNDS"
	// CodeTypeMismatch indicates a value incompatible with the column's
	// classified type.
	CodeTypeMismatch Code = "TYPE_MISMATCH"
	// CodeImputation indicates a fill statistic that is not computable or
	// was requested on the wrong column kind.
	CodeImputation Code = "IMPUTATION_ERROR"
	// CodeUnsupportedColumn indicates an operation requested on a column
	// of the wrong classification.
	CodeUnsupportedColumn Code = "UNSUPPORTED_COLUMN"
	// CodeInsufficientColumns indicates fewer columns than the minimum a
	// statistic needs.
	CodeInsufficientColumns Code = "INSUFFICIENT_COLUMNS"
	// CodeInsufficientData indicates fewer rows/observations than the
	// minimum a statistic needs.
	CodeInsufficientData Code = "INSUFFICIENT_DATA"
	// CodeInvalidRequest indicates a malformed or inconsistent request
	// object (unknown transform kind, missing payload, bad policy).
	CodeInvalidRequest Code = "INVALID_REQUEST"
	// CodeNotFound indicates a dataset ID unknown to the host store.
	CodeNotFound Code = "NOT_FOUND"
)

// Error is the structured error returned by every core operation. Index
// holds -1 while no position is recorded; MarshalJSON elides it then, so
// the sentinel never reaches a wire response.
type Error struct {
	Code    Code
	Op      string
	Column  string
	Index   int
	Message string
	Err     error
}

// MarshalJSON serializes the error, omitting the column when empty and
// the index while it carries the unset sentinel.
func (e *Error) MarshalJSON() ([]byte, error) {
	var wire struct {
		Code    Code   `json:"code"`
		Op      string `json:"op"`
		Column  string `json:"column,omitempty"`
		Index   *int   `json:"index,omitempty"`
		Message string `json:"message"`
	}
	wire.Code = e.Code
	wire.Op = e.Op
	wire.Column = e.Column
	wire.Message = e.Message
	if e.Index >= 0 {
		wire.Index = &e.Index
	}
	return json.Marshal(&wire)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Message)
	if e.Column != "" {
		msg = fmt.Sprintf("%s (column %q)", msg, e.Column)
	}
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s (index %d)", msg, e.Index)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a taxonomy error for the given operation.
func New(code Code, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message, Index: -1}
}

// Wrap creates a taxonomy error around an underlying cause.
func Wrap(code Code, op, message string, err error) *Error {
	return &Error{Code: code, Op: op, Message: message, Index: -1, Err: err}
}

// WithColumn records the offending column name. Returns the receiver for
// chaining.
func (e *Error) WithColumn(name string) *Error {
	e.Column = name
	return e
}

// WithIndex records the offending row/column position.
func (e *Error) WithIndex(i int) *Error {
	e.Index = i
	return e
}

// Constructors per taxonomy entry.

// NewParse creates a PARSE_ERROR for malformed selection text.
func NewParse(op, message string) *Error {
	return New(CodeParse, op, message)
}

// NewSelection creates a SELECTION_ERROR.
func NewSelection(op, message string) *Error {
	return New(CodeSelection, op, message)
}

// NewOutOfBounds creates an OUT_OF_BOUNDS error.
func NewOutOfBounds(op, message string) *Error {
	return New(CodeOutOfBounds, op, message)
}

// NewTypeMismatch creates a TYPE_MISMATCH error.
func NewTypeMismatch(op, message string) *Error {
	return New(CodeTypeMismatch, op, message)
}

// NewImputation creates an IMPUTATION_ERROR.
func NewImputation(op, message string) *Error {
	return New(CodeImputation, op, message)
}

// NewUnsupportedColumn creates an UNSUPPORTED_COLUMN error.
func NewUnsupportedColumn(op, message string) *Error {
	return New(CodeUnsupportedColumn, op, message)
}

// NewInsufficientColumns creates an INSUFFICIENT_COLUMNS error.
func NewInsufficientColumns(op, message string) *Error {
	return New(CodeInsufficientColumns, op, message)
}

// NewInsufficientData creates an INSUFFICIENT_DATA error.
func NewInsufficientData(op, message string) *Error {
	return New(CodeInsufficientData, op, message)
}

// NewInvalidRequest creates an INVALID_REQUEST error.
func NewInvalidRequest(op, message string) *Error {
	return New(CodeInvalidRequest, op, message)
}

// NewNotFound creates a NOT_FOUND error.
func NewNotFound(op, message string) *Error {
	return New(CodeNotFound, op, message)
}

// CodeOf extracts the taxonomy code from err, or "" when err is not a
// taxonomy error.
func CodeOf(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps a taxonomy error to the status code the transport
// layer should respond with. Non-taxonomy errors map to 500.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeParse, CodeSelection, CodeOutOfBounds, CodeTypeMismatch, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeImputation, CodeUnsupportedColumn, CodeInsufficientColumns, CodeInsufficientData:
		return http.StatusUnprocessableEntity
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
