package parking

import (
	"errors"
	"fmt"
	"strings"
)

// Domain-level error values returned by the parking service.
var (
	ErrLotNotFound          = errors.New("parking lot not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrLotReferenceNotFound = errors.New("parking lot not found for this parkingLotId")
	ErrInvalidRecordID      = errors.New("invalid record id")
	ErrInvalidRecord        = errors.New("invalid record")
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

// ValidationError carries every message accumulated while checking a request
// body. Callers surface the full list at once rather than the first failure.
type ValidationError struct {
	messages []string
}

// NewValidationError copies the accumulated messages into a ValidationError.
func NewValidationError(messages []string) *ValidationError {
	copied := make([]string, len(messages))
	copy(copied, messages)
	return &ValidationError{messages: copied}
}

// Error returns the joined message list.
func (validationError *ValidationError) Error() string {
	return "validation error: " + strings.Join(validationError.messages, "; ")
}

// Messages returns the individual failure messages.
func (validationError *ValidationError) Messages() []string {
	return validationError.messages
}

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
