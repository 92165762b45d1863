// Package apperr defines the typed failures returned by the interaction engine
// and the identity gate, and their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure.
type Code int

const (
	Internal Code = iota
	Unauthenticated
	InvalidArgument
	NotFound
	Forbidden
	Conflict
)

func (c Code) String() string {
	switch c {
	case Unauthenticated:
		return "unauthenticated"
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	}
	return "internal"
}

// Error is a classified failure. Subject names the missing entity for NotFound
// ("document", "comment"); Field names the offending input for InvalidArgument.
type Error struct {
	Code    Code
	Subject string
	Field   string
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		switch {
		case e.Code == NotFound && e.Subject != "":
			msg = e.Subject + " not found"
		default:
			msg = e.Code.String()
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code, and on Subject when the target carries one, so that
// errors.Is(err, ErrNotFound) matches any missing entity while
// errors.Is(err, NotFoundError("comment")) only matches a missing comment.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Subject == "" || t.Subject == e.Subject
}

var (
	ErrUnauthenticated = &Error{Code: Unauthenticated}
	ErrInvalidArgument = &Error{Code: InvalidArgument}
	ErrNotFound        = &Error{Code: NotFound}
	ErrForbidden       = &Error{Code: Forbidden}
	ErrConflict        = &Error{Code: Conflict}
)

func UnauthenticatedError(err error) *Error {
	return &Error{Code: Unauthenticated, Msg: "unauthenticated", Err: err}
}

func InvalidArgumentError(field, msg string) *Error {
	return &Error{Code: InvalidArgument, Field: field, Msg: msg}
}

func NotFoundError(subject string) *Error {
	return &Error{Code: NotFound, Subject: subject}
}

func ForbiddenError(msg string) *Error {
	return &Error{Code: Forbidden, Msg: msg}
}

func ConflictError(err error) *Error {
	return &Error{Code: Conflict, Msg: "concurrent modification, retry", Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// HTTPStatus maps err onto the status code the transport should answer with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether the whole operation may be re-run from a fresh load.
func IsRetryable(err error) bool {
	return CodeOf(err) == Conflict
}
