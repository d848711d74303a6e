// Package apperr defines the error kinds shared by the REST and GraphQL surfaces.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalidState    Kind = "INVALID_STATE"
	KindBelowMinimum    Kind = "BELOW_MINIMUM"
	KindItemUnavailable Kind = "ITEM_UNAVAILABLE"
	KindAlreadyAssigned Kind = "ALREADY_ASSIGNED"
	KindConflict        Kind = "CONFLICT"
	KindUnavailable     Kind = "UNAVAILABLE"
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindInternal        Kind = "INTERNAL"
)

// Error carries a Kind plus a client-safe message. Err, when set, is the
// underlying cause and is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Extensions is read by graphql-go and copied into the "extensions" member
// of the GraphQL error.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": string(e.Kind)}
	for k, v := range e.Details {
		ext[k] = v
	}
	return ext
}

// With attaches a detail and returns e.
func (e *Error) With(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound builds "<entity> not found".
func NotFound(entity string) *Error { return Newf(KindNotFound, "%s not found", entity) }

func InvalidState(message string) *Error { return New(KindInvalidState, message) }

func InvalidInput(message string) *Error { return New(KindInvalidInput, message) }

func Conflict(message string) *Error { return New(KindConflict, message) }

func AlreadyAssigned(message string) *Error { return New(KindAlreadyAssigned, message) }

func Unavailable(message string) *Error { return New(KindUnavailable, message) }

func BelowMinimum(minimum, subtotal float64) *Error {
	return Newf(KindBelowMinimum, "minimum order amount is $%.2f, current subtotal is $%.2f", minimum, subtotal).
		With("minimum", minimum).
		With("subtotal", subtotal)
}

func ItemUnavailable(item string) *Error {
	return Newf(KindItemUnavailable, "%s is not available", item).With("item", item)
}

// Internal hides err behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// From returns err as an *Error, wrapping foreign errors as Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindAlreadyAssigned, KindConflict:
		return http.StatusConflict
	case KindInvalidState, KindBelowMinimum, KindItemUnavailable, KindUnavailable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
