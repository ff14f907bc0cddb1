package market

import (
	"errors"
	"fmt"
)

// Validation failure reasons.
const (
	ReasonMissingField     = "missing field"
	ReasonPasswordMismatch = "password mismatch"
	ReasonNoRole           = "no role selected"
)

// ValidationError rejects a form submission. Reason classifies the failure,
// Message is the text shown to the user.
type ValidationError struct {
	Reason  string
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(reason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s: %s", e.Reason, e.Message)
}

// Is matches any ValidationError with the same reason. A target without a
// reason matches every ValidationError.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = &ValidationError{}
	// ErrMissingField matches a missing required field.
	ErrMissingField = &ValidationError{Reason: ReasonMissingField}
	// ErrPasswordMismatch matches a password/confirmation mismatch.
	ErrPasswordMismatch = &ValidationError{Reason: ReasonPasswordMismatch}
	// ErrNoRoleSelected matches a submission without a role.
	ErrNoRoleSelected = &ValidationError{Reason: ReasonNoRole}
)

// InvalidNumberMessage is shown when price or quantity text does not parse.
const InvalidNumberMessage = "Please enter valid numbers for price and quantity."

// NumberFormatError reports numeric text that does not parse.
type NumberFormatError struct {
	Field string
	Input string
	Err   error
}

func (e *NumberFormatError) Error() string {
	return fmt.Sprintf("invalid number for %s: %q", e.Field, e.Input)
}

func (e *NumberFormatError) Unwrap() error {
	return e.Err
}

// ResourceLoadError reports a missing image or other static resource.
// Callers swallow it and fall back to a placeholder.
type ResourceLoadError struct {
	Path string
	Err  error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("failed to load resource %s: %v", e.Path, e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}

// DatabaseConnectionError aborts startup.
type DatabaseConnectionError struct {
	Driver string
	Err    error
}

func (e *DatabaseConnectionError) Error() string {
	return fmt.Sprintf("database connection failed (%s): %v", e.Driver, e.Err)
}

func (e *DatabaseConnectionError) Unwrap() error {
	return e.Err
}

// IsDatabaseConnectionError reports whether err wraps a DatabaseConnectionError.
func IsDatabaseConnectionError(err error) bool {
	var dbErr *DatabaseConnectionError
	return errors.As(err, &dbErr)
}
