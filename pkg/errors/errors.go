package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

// Codes mirror the error taxonomy surfaced across the API boundary. Clients
// pattern-match on these strings, so they are part of the wire contract.
const (
	CodeValidation         Code = "invalid-argument"
	CodeUnauthorized       Code = "unauthenticated"
	CodePermissionDenied   Code = "permission-denied"
	CodeNotFound           Code = "not-found"
	CodeConflict           Code = "conflict"
	CodeFailedPrecondition Code = "failed-precondition"
	CodeIdempotency        Code = "idempotency-key-reused"
	CodeRateLimit          Code = "rate-limit-exceeded"
	CodeInternal           Code = "internal"
	CodeDependency         Code = "unavailable"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func meta(status int, message string) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: message}
}

func (m Metadata) withDetails() Metadata {
	m.DetailsAllowed = true
	return m
}

func (m Metadata) retryable() Metadata {
	m.Retryable = true
	return m
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:         meta(http.StatusBadRequest, "validation failed").withDetails(),
	CodeUnauthorized:       meta(http.StatusUnauthorized, "authentication required"),
	CodePermissionDenied:   meta(http.StatusForbidden, "access denied"),
	CodeNotFound:           meta(http.StatusNotFound, "resource not found"),
	CodeConflict:           meta(http.StatusConflict, "conflict detected"),
	CodeFailedPrecondition: meta(http.StatusUnprocessableEntity, "state transition disallowed").withDetails(),
	CodeIdempotency:        meta(http.StatusConflict, "idempotency key reused").withDetails(),
	CodeRateLimit:          meta(http.StatusTooManyRequests, "rate limit exceeded"),
	CodeInternal:           meta(http.StatusInternalServerError, "internal server error").retryable(),
	CodeDependency:         meta(http.StatusServiceUnavailable, "service temporarily unavailable").retryable(),
}

// MetadataFor returns presentation metadata for the given code. Unknown
// codes fall back to the internal error metadata.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error carried from services to the HTTP boundary. The
// cause chain stays internal; only code, message, and allowed details reach
// the client.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// Code is nil-safe; a nil *Error reads as internal.
func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return string(e.code) + ": " + e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As pulls the first *Error out of err's chain, or nil when there is none.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
