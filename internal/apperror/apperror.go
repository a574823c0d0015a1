// Package apperror defines the failure taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure independently of the transport.
type Kind string

// Failure kinds. The string value is what clients see in the response "code" field.
const (
	KindInvalidCredential     Kind = "INVALID_CREDENTIAL"
	KindInvalidToken          Kind = "INVALID_TOKEN"
	KindTokenExpired          Kind = "TOKEN_EXPIRED"
	KindNotFoundOrForbidden   Kind = "NOT_FOUND_OR_FORBIDDEN"
	KindForbidden             Kind = "FORBIDDEN"
	KindAlreadyExists         Kind = "ALREADY_EXISTS"
	KindDuplicateEntry        Kind = "DUPLICATE_ENTRY"
	KindInvalidReference      Kind = "INVALID_REFERENCE"
	KindInvalidTransition     Kind = "INVALID_TRANSITION"
	KindValidationFailed      Kind = "VALIDATION_FAILED"
	KindEmailDeliveryFailed   Kind = "EMAIL_DELIVERY_FAILED"
	KindUpstreamStorageError  Kind = "UPSTREAM_STORAGE_ERROR"
	KindInvalidOrExpiredToken Kind = "INVALID_OR_EXPIRED_TOKEN"
	KindRateLimited           Kind = "RATE_LIMITED"
	KindInternal              Kind = "INTERNAL"
)

var httpStatus = map[Kind]int{
	KindInvalidCredential:     http.StatusUnauthorized,
	KindInvalidToken:          http.StatusUnauthorized,
	KindTokenExpired:          http.StatusUnauthorized,
	KindNotFoundOrForbidden:   http.StatusNotFound,
	KindForbidden:             http.StatusForbidden,
	KindAlreadyExists:         http.StatusConflict,
	KindDuplicateEntry:        http.StatusConflict,
	KindInvalidReference:      http.StatusBadRequest,
	KindInvalidTransition:     http.StatusConflict,
	KindValidationFailed:      http.StatusBadRequest,
	KindEmailDeliveryFailed:   http.StatusBadGateway,
	KindUpstreamStorageError:  http.StatusBadGateway,
	KindInvalidOrExpiredToken: http.StatusBadRequest,
	KindRateLimited:           http.StatusTooManyRequests,
	KindInternal:              http.StatusInternalServerError,
}

// HTTPStatus returns the status code a handler should answer with for k.
func (k Kind) HTTPStatus() int {
	if s, ok := httpStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified failure. Err keeps the underlying cause for logs and errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is(err, apperror.ErrDuplicateEntry) works for any message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// New builds an Error of kind k.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of kind k around cause.
func Wrap(k Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Sentinels usable as errors.Is targets.
var (
	ErrInvalidCredential     = &Error{Kind: KindInvalidCredential}
	ErrInvalidToken          = &Error{Kind: KindInvalidToken}
	ErrTokenExpired          = &Error{Kind: KindTokenExpired}
	ErrNotFoundOrForbidden   = &Error{Kind: KindNotFoundOrForbidden}
	ErrForbidden             = &Error{Kind: KindForbidden}
	ErrAlreadyExists         = &Error{Kind: KindAlreadyExists}
	ErrDuplicateEntry        = &Error{Kind: KindDuplicateEntry}
	ErrInvalidReference      = &Error{Kind: KindInvalidReference}
	ErrInvalidTransition     = &Error{Kind: KindInvalidTransition}
	ErrValidationFailed      = &Error{Kind: KindValidationFailed}
	ErrEmailDeliveryFailed   = &Error{Kind: KindEmailDeliveryFailed}
	ErrUpstreamStorageError  = &Error{Kind: KindUpstreamStorageError}
	ErrInvalidOrExpiredToken = &Error{Kind: KindInvalidOrExpiredToken}
)

// NotFoundOrForbidden is the uniform answer for missing or inaccessible entities.
func NotFoundOrForbidden(entity string) *Error {
	return New(KindNotFoundOrForbidden, "%s not found or access denied", entity)
}

// Validation builds a ValidationFailed error.
func Validation(format string, args ...any) *Error {
	return New(KindValidationFailed, format, args...)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message of err. Unclassified errors get a generic text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
