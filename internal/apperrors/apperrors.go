// Package apperrors defines the coded error taxonomy shared by the
// services and the HTTP layer. Every expected, caller-facing failure is
// an *AppError with a Code; anything else is treated as internal.
package apperrors

import "fmt"

// Code classifies an error for the transport layer.
type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodeConflict         Code = "CONFLICT"
	CodeNotFound         Code = "NOT_FOUND"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodeInternal         Code = "INTERNAL"
)

// AppError carries a code, a caller-facing message and an optional cause.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// New creates an AppError with the given code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError that preserves the underlying cause.
func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func Validation(msg string) *AppError       { return New(CodeValidation, msg) }
func Conflict(msg string) *AppError         { return New(CodeConflict, msg) }
func NotFound(msg string) *AppError         { return New(CodeNotFound, msg) }
func PermissionDenied(msg string) *AppError { return New(CodePermissionDenied, msg) }
func Unauthenticated(msg string) *AppError  { return New(CodeUnauthenticated, msg) }
func Internal(msg string) *AppError         { return New(CodeInternal, msg) }

// InternalWrap marks an unexpected failure (e.g. a broken transaction)
// without leaking the cause to the caller-facing message.
func InternalWrap(cause error, msg string) *AppError {
	return Wrap(CodeInternal, msg, cause)
}
