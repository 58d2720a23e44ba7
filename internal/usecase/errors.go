package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindStorage      ErrorKind = "storage"
	KindInternal     ErrorKind = "internal"
)

// handlerはStatusとMessage（とDetails）だけ返す。Errは5xxのログ用。
type HTTPError struct {
	Status  int
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *HTTPError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%d: %s: %s", e.Status, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Kind:    kindFromStatus(status),
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func IsKind(err error, kind ErrorKind) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Kind == kind
}

// 400。当てはまる問題を全部Detailsに入れる
func NewValidationError(details ...string) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Kind:    KindValidation,
		Message: "validation error",
		Details: details,
	}
}

func errDB(err error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: "db error",
		Err:     err,
	}
}

func errStorage(err error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Kind:    KindStorage,
		Message: "storage error",
		Err:     err,
	}
}

func errConflict(message string) error {
	return NewHTTPError(http.StatusConflict, message)
}

func errNotFound(what string) error {
	return NewHTTPError(http.StatusNotFound, what+" not found")
}

func errForbidden() error {
	return NewHTTPError(http.StatusForbidden, "forbidden")
}

func errUnauthorized() error {
	return NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

func kindFromStatus(status int) ErrorKind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	}
	return KindInternal
}
