// Package domainerrors carries the error taxonomy for the onboarding
// pipeline. Every error that crosses a package boundary is coded so callers
// can branch on classification instead of sniffing message text.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for routing and presentation decisions.
type Code string

const (
	// CodeValidation marks local, field-scoped input rejections. These never
	// reach the network.
	CodeValidation Code = "VALIDATION"
	// CodeMissingPrecursor marks a required earlier-stage artifact that could
	// not be loaded. Always resolved by a delayed redirect to the pipeline
	// start or the sign-in boundary.
	CodeMissingPrecursor Code = "MISSING_PRECURSOR"
	// CodeNetwork marks transport or parse failures talking to the remote
	// account service. Retryable; drafts are preserved.
	CodeNetwork Code = "NETWORK"
	// CodeTimeout marks a remote call that exceeded its deadline. Treated as
	// a network failure by callers.
	CodeTimeout Code = "TIMEOUT"
	// CodeRemoteRejected marks a business-rule failure reported by the remote
	// service. Retryable; drafts are preserved.
	CodeRemoteRejected Code = "REMOTE_REJECTED"

	CodeBadRequest   Code = "BAD_REQUEST"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL"
)

// Error is the concrete coded error type. Wrapped causes remain reachable
// through errors.Unwrap for logging.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// Is is a readability alias for HasCode.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so nothing escapes classification.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a coded error onto the transport status used by the
// presentation boundary.
func ToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound, CodeMissingPrecursor:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRemoteRejected:
		return http.StatusUnprocessableEntity
	case CodeNetwork, CodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
