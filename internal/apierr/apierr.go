package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeBusy            = "busy"
	CodeInvalidRelation = "invalid_relation"
	CodeValidation      = "validation"
	CodeStorage         = "storage"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// NotFound marks a missing record. Terminal: callers never retry it.
func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

// Conflict marks contention that outlived its retry budget or a duplicate
// row outside the resolver's recovery path. Retryable by the caller.
func Conflict(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeConflict, fmt.Errorf(format, args...))
}

// Busy marks a single transient lock-contention signal from the store. It
// is recovered internally by the retry loop and never reaches callers.
func Busy(err error) *Error {
	return New(http.StatusConflict, CodeBusy, err)
}

// InvalidRelation marks a violated business rule between records.
func InvalidRelation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeInvalidRelation, fmt.Errorf(format, args...))
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

// Storage wraps an unexpected persistence failure unchanged.
func Storage(err error) *Error {
	return New(http.StatusInternalServerError, CodeStorage, err)
}

func hasCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

func IsNotFound(err error) bool        { return hasCode(err, CodeNotFound) }
func IsConflict(err error) bool        { return hasCode(err, CodeConflict) }
func IsBusy(err error) bool            { return hasCode(err, CodeBusy) }
func IsInvalidRelation(err error) bool { return hasCode(err, CodeInvalidRelation) }
func IsValidation(err error) bool      { return hasCode(err, CodeValidation) }

// StatusOf maps an error to the HTTP status it should surface as.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}
