package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("engagement was modified concurrently")
	ErrCorruptRecord   = errors.New("corrupt record")
	ErrForbidden       = errors.New("actor is not allowed to access this resource")
)

// ValidationError is malformed input; it never reaches persistence.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(code, msg string) error {
	return &ValidationError{Code: code, Message: msg}
}

// TransitionError is a wrong actor or wrong current state for the requested event.
type TransitionError struct {
	Code    string
	Event   string
	From    string
	Role    Role
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s (event=%s from=%s role=%s)", e.Code, e.Message, e.Event, e.From, e.Role)
}

func NewTransitionError(event, from string, role Role, msg string) error {
	return &TransitionError{
		Code:    "invalidTransition",
		Event:   event,
		From:    from,
		Role:    role,
		Message: msg,
	}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTransition reports whether err is (or wraps) a TransitionError.
func IsTransition(err error) bool {
	var t *TransitionError
	return errors.As(err, &t)
}
