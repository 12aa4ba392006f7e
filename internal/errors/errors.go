package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application.
// The taxonomy maps to how the client is expected to recover:
// validation errors mean the request itself is malformed, business rule
// errors mean the request is well formed but a domain rule blocks it,
// invalid state errors mean the target can no longer be mutated.
var (
	ErrNotFound      = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists = new(ErrCodeAlreadyExists, "resource already exists")
	ErrConflict      = new(ErrCodeConflict, "conflicting concurrent operation")
	ErrValidation    = new(ErrCodeValidation, "validation error")
	ErrBusinessRule  = new(ErrCodeBusinessRule, "business rule violation")
	ErrInvalidState  = new(ErrCodeInvalidState, "invalid state for operation")
	ErrPermission    = new(ErrCodePermission, "permission denied")
	ErrDatabase      = new(ErrCodeDatabase, "database error")
	ErrSystem        = new(ErrCodeSystemError, "system error")
	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:      http.StatusNotFound,
		ErrAlreadyExists: http.StatusConflict,
		ErrConflict:      http.StatusConflict,
		ErrValidation:    http.StatusBadRequest,
		ErrBusinessRule:  http.StatusUnprocessableEntity,
		ErrInvalidState:  http.StatusConflict,
		ErrPermission:    http.StatusForbidden,
		ErrDatabase:      http.StatusInternalServerError,
		ErrSystem:        http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeConflict      = "conflict"
	ErrCodeValidation    = "validation_error"
	ErrCodeBusinessRule  = "business_rule_error"
	ErrCodeInvalidState  = "invalid_state"
	ErrCodePermission    = "permission_denied"
	ErrCodeDatabase      = "database_error"
	ErrCodeSystemError   = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// new creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsBusinessRule checks if an error is a business rule error
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrBusinessRule)
}

// IsInvalidState checks if an error is an invalid state error
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsPermission checks if an error is a permission denied error
func IsPermission(err error) bool {
	return errors.Is(err, ErrPermission)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
