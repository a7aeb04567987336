package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed application error that knows its HTTP status.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Code so wrapped copies of a predefined error still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func Wrap(err error, base *Error, message string) *Error {
	if message == "" {
		message = base.Message
	}
	return &Error{Code: base.Code, Status: base.Status, Message: message, Err: err}
}

// WithMessage returns a copy of base with a different message.
func WithMessage(base *Error, message string) *Error {
	clone := *base
	clone.Message = message
	return &clone
}

var (
	ErrValidation              = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrUnauthorized            = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrInvalidCredentials      = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount         = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrForbidden               = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound                = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict                = New("CONFLICT", http.StatusConflict, "conflict")
	ErrCollaboratorUnavailable = New("COLLABORATOR_UNAVAILABLE", http.StatusServiceUnavailable, "upstream dependency unavailable")
	ErrInternal                = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error, defaulting to ErrInternal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal, "")
}
