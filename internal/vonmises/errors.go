package vonmises

import (
	"errors"
	"fmt"
)

// Domain errors for fitting operations.
var (
	// ErrInvalidInput indicates samples that cannot be fitted: mismatched
	// lengths, non-finite values or angles that are not uniformly spaced.
	ErrInvalidInput = errors.New("vonmises: invalid input")

	// ErrNumericFailure indicates the amplitude least-squares problem could
	// not be solved.
	ErrNumericFailure = errors.New("vonmises: numeric failure")
)

// InputError wraps ErrInvalidInput with the offending field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NumericError wraps a linear algebra failure with the sharpness it occurred at.
type NumericError struct {
	Width   float64
	Wrapped error
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("width %.4f: %v", e.Width, e.Wrapped)
}

func (e *NumericError) Unwrap() error {
	return e.Wrapped
}
