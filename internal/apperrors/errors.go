package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of any transport.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindConflict
	KindNotAcceptable
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindNotAcceptable:
		return "not_acceptable"
	default:
		return "unknown"
	}
}

// Error is a field-scoped domain failure. Field names the request field the
// message applies to, so clients can render inline form errors.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

func BadRequest(field, message string) *Error {
	return &Error{Kind: KindBadRequest, Field: field, Message: message}
}

func Unauthorized(field, message string) *Error {
	return &Error{Kind: KindUnauthorized, Field: field, Message: message}
}

func NotFound(field, message string) *Error {
	return &Error{Kind: KindNotFound, Field: field, Message: message}
}

func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

func NotAcceptable(field, message string) *Error {
	return &Error{Kind: KindNotAcceptable, Field: field, Message: message}
}

// KindOf returns the Kind carried by err, or KindUnknown if err is not a
// domain failure. Storage and signing errors stay KindUnknown so internal
// detail never leaks through the response boundary.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// FieldOf returns the field name carried by err, or "" for non-domain errors.
func FieldOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
