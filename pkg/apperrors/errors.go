package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the failure class of an Error. Codes map 1:1 to HTTP
// status classes in StatusOf.
type Code string

const (
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAuthorization      Code = "AUTHORIZATION_ERROR"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeConflict           Code = "CONFLICT"
	CodePayloadTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// Error is a typed failure surfaced to callers. The wrapped cause, if any,
// is reachable through errors.Unwrap.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed caller input.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent referenced entity.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Authorization reports that the actor lacks the role or ownership required
// for the action.
func Authorization(format string, args ...any) *Error {
	return &Error{Code: CodeAuthorization, Message: fmt.Sprintf(format, args...)}
}

// InvalidState reports an action that is not legal in the entity's current
// lifecycle state.
func InvalidState(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// PayloadTooLarge reports an attachment exceeding the configured size policy.
func PayloadTooLarge(format string, args ...any) *Error {
	return &Error{Code: CodePayloadTooLarge, Message: fmt.Sprintf(format, args...)}
}

// StorageUnavailable wraps a transient external-store failure that survived
// the bounded retry.
func StorageUnavailable(err error, format string, args ...any) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the error code, or empty when err is not an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// StatusOf maps an error to its HTTP status. Unknown errors are treated as
// internal failures.
func StatusOf(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAuthorization:
		return http.StatusForbidden
	case CodeInvalidState, CodeConflict:
		return http.StatusConflict
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
