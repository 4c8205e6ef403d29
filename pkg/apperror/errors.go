// Package apperror defines the structured errors returned by grid search
// validation and the HTTP API. Each Error carries a stable code that clients
// can switch on and that maps onto an HTTP status.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is the machine-readable part of an Error.
type ErrorCode string

// Request validation.
const (
	CodeInvalidBounds     ErrorCode = "INVALID_BOUNDS"
	CodeStartOutOfBounds  ErrorCode = "START_OUT_OF_BOUNDS"
	CodeGoalOutOfBounds   ErrorCode = "GOAL_OUT_OF_BOUNDS"
	CodeInvalidBeamWidth  ErrorCode = "INVALID_BEAM_WIDTH"
	CodeInvalidNodeLimit  ErrorCode = "INVALID_NODE_LIMIT"
	CodeInvalidDensity    ErrorCode = "INVALID_DENSITY"
	CodeInvalidAlgorithm  ErrorCode = "INVALID_ALGORITHM"
	CodeInvalidScenario   ErrorCode = "INVALID_SCENARIO"
	CodeDuplicateScenario ErrorCode = "DUPLICATE_SCENARIO"
	CodeNilInput          ErrorCode = "NIL_INPUT"
	CodeInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	CodeInvalidPagination ErrorCode = "INVALID_PAGINATION"
)

// Everything else.
const (
	CodeTimeout     ErrorCode = "TIMEOUT"
	CodeCanceled    ErrorCode = "CANCELED"
	CodeNotFound    ErrorCode = "NOT_FOUND"
	CodeRateLimited ErrorCode = "RATE_LIMITED"
	CodeUnavailable ErrorCode = "UNAVAILABLE"
	CodeInternal    ErrorCode = "INTERNAL_ERROR"
)

// statusClientClosedRequest is the nginx convention for a request the client abandoned.
const statusClientClosedRequest = 499

var statusByCode = map[ErrorCode]int{
	CodeInvalidBounds:     http.StatusBadRequest,
	CodeStartOutOfBounds:  http.StatusBadRequest,
	CodeGoalOutOfBounds:   http.StatusBadRequest,
	CodeInvalidBeamWidth:  http.StatusBadRequest,
	CodeInvalidNodeLimit:  http.StatusBadRequest,
	CodeInvalidDensity:    http.StatusBadRequest,
	CodeInvalidAlgorithm:  http.StatusBadRequest,
	CodeInvalidScenario:   http.StatusBadRequest,
	CodeDuplicateScenario: http.StatusBadRequest,
	CodeNilInput:          http.StatusBadRequest,
	CodeInvalidArgument:   http.StatusBadRequest,
	CodeInvalidPagination: http.StatusBadRequest,
	CodeTimeout:           http.StatusGatewayTimeout,
	CodeCanceled:          statusClientClosedRequest,
	CodeNotFound:          http.StatusNotFound,
	CodeRateLimited:       http.StatusTooManyRequests,
	CodeUnavailable:       http.StatusServiceUnavailable,
}

// Error is an application error. Field names the offending request field,
// Details is serialized into the API error body as is.
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus returns the status the API answers with for this code; unknown codes are 500.
func (e *Error) HTTPStatus() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WithDetails sets Details[key] and returns e for chaining.
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithField sets Field and returns e for chaining.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field}
}

// Wrap attaches code and message to cause; errors.Is still sees cause.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// Code returns the code of the first *Error in err's chain, or CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus is Error.HTTPStatus for arbitrary errors: nil is 200,
// errors without an *Error in the chain are 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// FromContext turns context.DeadlineExceeded and context.Canceled into
// TIMEOUT and CANCELED. Any other error yields nil.
func FromContext(err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, CodeTimeout, "operation timed out")
	case errors.Is(err, context.Canceled):
		return Wrap(err, CodeCanceled, "operation canceled")
	}
	return nil
}

// ErrNilRequest is returned when a search is started without a request.
var ErrNilRequest = New(CodeNilInput, "search request is nil")

// ValidationErrors collects every problem found in a request so the
// client sees all of them in one response.
type ValidationErrors struct {
	Errors []*Error
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

func (v *ValidationErrors) Add(err *Error) {
	v.Errors = append(v.Errors, err)
}

func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Add(New(code, message))
}

func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Add(NewWithField(code, message, field))
}

func (v *ValidationErrors) IsValid() bool {
	return len(v.Errors) == 0
}

// Merge appends all errors of other; nil is ignored.
func (v *ValidationErrors) Merge(other *ValidationErrors) {
	if other != nil {
		v.Errors = append(v.Errors, other.Errors...)
	}
}

// Err returns nil, the single collected error unchanged, or one error
// carrying the first code and all messages joined with "; ".
func (v *ValidationErrors) Err() error {
	switch len(v.Errors) {
	case 0:
		return nil
	case 1:
		return v.Errors[0]
	}
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Error()
	}
	return New(v.Errors[0].Code, strings.Join(msgs, "; ")).
		WithDetails("errors", len(v.Errors))
}
