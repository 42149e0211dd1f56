package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrTransport indicates a network or HTTP-level failure talking to the backend
	ErrTransport = errors.New("transport failure")

	// ErrValidation indicates invalid local input that never reaches the network
	ErrValidation = errors.New("validation failed")

	// ErrServerRejection indicates the backend accepted the request but rejected it
	ErrServerRejection = errors.New("server rejected request")

	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrSessionRequired indicates a request arrived without a usable session token
	ErrSessionRequired = errors.New("session required")
)

// WrapError wraps an error with context message
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Transportf builds a transport error with a formatted detail message
func Transportf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrTransport)
}

// Validationf builds a validation error with a formatted detail message
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// Rejectionf builds a server rejection error with a formatted detail message
func Rejectionf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrServerRejection)
}

// IsTransport checks if error is a transport error
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsValidation checks if error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsServerRejection checks if error is a server rejection
func IsServerRejection(err error) bool {
	return errors.Is(err, ErrServerRejection)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
