package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeUnsupported ErrorType = "unsupported"
	ErrorTypeConversion  ErrorType = "conversion"
	ErrorTypeDependency  ErrorType = "dependency"
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeIO          ErrorType = "io"
	ErrorTypeInternal    ErrorType = "internal"
)

// DomainError represents a domain-specific error with context.
// Hints carry operator-facing remediation steps (e.g. how to install a
// missing external tool) and are surfaced by the API and CLI front ends.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Hints   []string
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func UnsupportedError(message string, err error) *DomainError {
	return NewError(ErrorTypeUnsupported, message, err)
}

func ConversionError(message string, err error) *DomainError {
	return NewError(ErrorTypeConversion, message, err)
}

// DependencyError reports a missing or broken external tool. Hints should
// tell the operator how to fix the host (install the tool, switch engines).
func DependencyError(message string, err error, hints ...string) *DomainError {
	e := NewError(ErrorTypeDependency, message, err)
	e.Hints = hints
	return e
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

// TypeOf returns the domain error type of err, unwrapping as needed.
// Errors that are not DomainErrors report ErrorTypeInternal.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrorTypeInternal
}

// HintsOf returns the remediation hints attached to err, if any.
func HintsOf(err error) []string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Hints
	}
	return nil
}
