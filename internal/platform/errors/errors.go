// Package errors carries coded errors from the data layer out to the wire.
// Import it as perr so the stdlib package stays usable alongside it
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for API clients. Values ride the wire, so
// append new codes at the end rather than reordering
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota // unclassified
	ErrorCodePanic                    // recovered handler panic
	ErrorCodeUnavailable              // transient, retry may succeed
	ErrorCodeTooManyRequests
	ErrorCodeConflict
	ErrorCodeUnauthorized
	ErrorCodeForbidden
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
)

// Error pairs a client-facing code with a developer message and an optional
// wrapped cause. Field names the offending input for validation failures
type Error struct {
	cause error
	msg   string
	code  ErrorCode
	field string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap exposes the cause to errors.Is and errors.As
func (e *Error) Unwrap() error { return e.cause }

// Code returns the classification
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending input field, when one was attached
func (e *Error) Field() string { return e.field }

// Wire is the JSON shape the response envelope embeds
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// New builds a coded error
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf builds a coded error with a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap builds a coded error around a cause
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

// Wrapf is Wrap with a formatted message
func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), cause: cause}
}

// NotFoundf builds a not-found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf builds a bad-input error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// JSONErrf builds a JSON decode error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf builds the error a recovered panic turns into
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// WithField copies err with an offending field name attached. Errors from
// outside this package pass through untouched
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// As unwraps err to (*Error, true) when one is in the chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf extracts the classification, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// Root walks Unwrap to the deepest cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// WireFrom flattens any error into its wire shape. nil gives the zero Wire
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return Wire{Code: e.code, Message: e.msg, Field: e.field}
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// HTTPStatus maps any error onto an HTTP status through its code
func HTTPStatus(err error) int { return statusOf(CodeOf(err)) }

func statusOf(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case ErrorCodeDuplicateKey, ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeJSON:
		return http.StatusBadRequest
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether err looks transient. Classification currently
// comes from the Postgres rules in pg.go
func Retryable(err error) bool { return IsRetryable(err) }
