// Package errors carries the API's typed failures. Every error that reaches
// an HTTP response is an *Error: Code identifies the failure class, Status is
// the HTTP status it maps to and Message is the Portuguese text shown to the
// client. Err holds the underlying cause and is never serialised.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err == nil:
		return e.Message
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target shares e's Code, so a message override made with
// Clone still matches the sentinel it came from.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an *Error around cause.
func Wrap(cause error, code string, status int, message string) *Error {
	e := New(code, status, message)
	e.Err = cause
	return e
}

var (
	ErrInvalidCredentials  = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "credenciais inválidas ou usuário não aprovado")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "recurso não encontrado")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "acesso negado")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "não autenticado")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "registro já existe")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "dados inválidos")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "erro interno do servidor")
	ErrServiceUnavailable  = New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "serviço temporariamente indisponível")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrArchiveNotAvailable = New("ARCHIVE_DISABLED", http.StatusServiceUnavailable, "arquivamento de backup desabilitado")
)

// FromError maps err onto the response taxonomy. Typed errors pass through,
// exhausted request deadlines become 503 and anything else is reported as a
// generic 500 with the cause kept for logging.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrServiceUnavailable.with(err, "")
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return ErrInternal.with(err, "")
}

// Clone copies a sentinel, replacing its message when one is given.
func Clone(base *Error, message string) *Error {
	if base == nil {
		return nil
	}
	return base.with(base.Err, message)
}

func Internal(cause error, message string) *Error {
	return ErrInternal.with(cause, message)
}

func Validation(cause error, message string) *Error {
	return ErrValidation.with(cause, message)
}

func (e *Error) with(cause error, message string) *Error {
	out := *e
	out.Err = cause
	if message != "" {
		out.Message = message
	}
	return &out
}
