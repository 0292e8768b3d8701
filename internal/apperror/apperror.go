package apperror

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies a catalog failure
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindForbidden
	KindNotFound
	KindInsufficientStock
	KindReference
)

var kindNames = map[Kind]string{
	KindInternal:          "internal_error",
	KindValidation:        "validation_error",
	KindBadRequest:        "bad_request",
	KindForbidden:         "forbidden",
	KindNotFound:          "not_found",
	KindInsufficientStock: "insufficient_stock",
	KindReference:         "reference_error",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Error is a classified catalog error. Field names the offending input when there is one.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func newError(kind Kind, field, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a constraint violation on write
func Validation(field, format string, args ...interface{}) *Error {
	return newError(KindValidation, field, format, args...)
}

// BadRequest reports a malformed or missing request parameter
func BadRequest(field, format string, args ...interface{}) *Error {
	return newError(KindBadRequest, field, format, args...)
}

// Forbidden reports a role lacking permission for an operation
func Forbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, "", format, args...)
}

// NotFound reports a reference that does not resolve
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, "", format, args...)
}

// InsufficientStock reports a decrement that would take stock below zero
func InsufficientStock(available, requested int) *Error {
	return newError(KindInsufficientStock, "quantity",
		"insufficient stock: %d available, %d requested", available, requested)
}

// Reference reports a dangling foreign reference on write
func Reference(field, format string, args ...interface{}) *Error {
	return newError(KindReference, field, format, args...)
}

// As extracts the classified error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err; unclassified errors are internal
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err onto the status code of an HTTP boundary
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindBadRequest, KindReference:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
