// Package domainerrors carries coded errors across service boundaries.
//
// Services return *Error values (directly or wrapped) so transports can map a
// stable Code to a status and a user-facing message without string matching.
// Infrastructure facts stay in pkg/platform/sentinel and are translated here.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies an error kind. The string value doubles as the public
// "error" slug in HTTP responses.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"

	// Attendance adjudication
	CodeNotEnrolled     Code = "not_enrolled"
	CodeNoVerification  Code = "no_verification_provided"
	CodeDuplicateEvent  Code = "duplicate_event"
	CodeCheckInRequired Code = "check_in_required"

	// Verification sessions
	CodeSessionNotFound Code = "session_not_found"
	CodeSessionExpired  Code = "session_expired"
	CodeSessionClosed   Code = "session_closed"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. A nil cause still
// yields a coded error so callers can wrap unconditionally.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a coded error with the same code and message.
// Sentinels declared with New therefore match wrapped copies of themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HasCode reports whether any coded error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost code in err's chain, or CodeInternal when err
// carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is is errors.Is re-exported so callers need a single import for matching.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
