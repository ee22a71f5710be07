// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrAlertNotFound = errors.New("alert not found")
	ErrConfigInvalid = errors.New("invalid configuration")
)

// ValidationError represents a rejected user-supplied value.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// SymbolError reports an operation against a symbol absent from the market.
type SymbolError struct {
	Symbol string
	Op     string
}

func (e *SymbolError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("unknown symbol %q", e.Symbol)
	}
	return fmt.Sprintf("%s: unknown symbol %q", e.Op, e.Symbol)
}

func (e *SymbolError) Unwrap() error {
	return ErrUnknownSymbol
}

// NewSymbolError creates a new SymbolError.
func NewSymbolError(op, symbol string) *SymbolError {
	return &SymbolError{
		Symbol: symbol,
		Op:     op,
	}
}

// IsInvalidInput reports whether err is an input validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnknownSymbol reports whether err refers to a symbol absent from the market.
func IsUnknownSymbol(err error) bool {
	return errors.Is(err, ErrUnknownSymbol)
}

// Is and As re-export the standard library helpers so callers importing this
// package under its own name still have them at hand.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
