// Package apierror provides the typed error taxonomy shared by all services
// and the standardized response envelope for the API. All errors returned to
// clients go through this package to ensure consistency and to prevent
// leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure. Handlers translate codes to HTTP status;
// services never import net/http.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeValidation        Code = "VALIDATION"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeDuplicate         Code = "DUPLICATE"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeTerminalState     Code = "TERMINAL_STATE"
	CodeIntegrity         Code = "INTEGRITY"

	// Boundary codes used by middleware, not by domain services.
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL"
)

// Error is the canonical error envelope for all 4xx/5xx responses.
type Error struct {
	Code   Code              `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Detail) }

func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(CodeNotFound, format, args...)
}

func Validation(format string, args ...interface{}) *Error {
	return New(CodeValidation, format, args...)
}

// ValidationFields wraps multiple field errors from request binding.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Detail: "Error de validacion", Fields: fields}
}

// InsufficientStock names the offending article so the client can tell
// which line failed.
func InsufficientStock(denominacion string, solicitado, disponible int) *Error {
	return New(CodeInsufficientStock,
		"Stock insuficiente para %q: solicitado %d, disponible %d",
		denominacion, solicitado, disponible)
}

func Duplicate(format string, args ...interface{}) *Error {
	return New(CodeDuplicate, format, args...)
}

// InvalidTransition reports the current vs requested lifecycle state.
func InvalidTransition(actual, destino string) *Error {
	return New(CodeInvalidTransition,
		"Transicion invalida: el pedido esta en estado %q y no puede pasar a %q", actual, destino)
}

func TerminalState(format string, args ...interface{}) *Error {
	return New(CodeTerminalState, format, args...)
}

func Integrity(format string, args ...interface{}) *Error {
	return New(CodeIntegrity, format, args...)
}

// From extracts a typed *Error from an error chain, or nil.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	e := From(err)
	return e != nil && e.Code == code
}

// HTTPStatus maps a domain error to the HTTP status the boundary returns.
// Unknown errors map to 500 — the ErrorHandler middleware hides their detail.
func HTTPStatus(err error) int {
	e := From(err)
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeInsufficientStock, CodeDuplicate, CodeInvalidTransition,
		CodeTerminalState, CodeIntegrity:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
