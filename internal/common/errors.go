package common

import (
	"errors"
	"net/http"
)

// Canonical error codes rendered in the error envelope.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_FAILED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeCannotDelete = "CANNOT_DELETE"
	CodeInternal     = "INTERNAL"
)

// ErrValidation is wrapped by every validation AppError so callers can use errors.Is.
var ErrValidation = errors.New("validation failed")

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// FieldError names one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validation builds a 400 error listing the offending fields.
func Validation(fields ...FieldError) *AppError {
	message := ErrValidation.Error()
	if len(fields) > 0 && fields[0].Message != "" {
		message = fields[0].Message
	}
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        ErrValidation,
		Details:    map[string]any{"fields": fields},
	}
}

// Invalid is shorthand for a single-field validation failure.
func Invalid(field, message string) *AppError {
	return Validation(FieldError{Field: field, Message: message})
}

// BadRequest reports malformed input such as an unparsable body or id.
func BadRequest(field, message string, err error) *AppError {
	return &AppError{
		Code:       CodeBadRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details:    map[string]any{"field": field},
	}
}

// NotFound wraps err (usually a domain sentinel) as a 404.
func NotFound(message string, err error) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound, Err: err}
}

// Conflict wraps err as a 409.
func Conflict(message string, err error) *AppError {
	return &AppError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusConflict, Err: err}
}

// CannotDelete reports a delete blocked by rows that still reference the target.
func CannotDelete(message string, err error) *AppError {
	return &AppError{Code: CodeCannotDelete, Message: message, HTTPStatus: http.StatusConflict, Err: err}
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal error", HTTPStatus: http.StatusInternalServerError, Err: err}
}
