// Package domain defines core types, interfaces, and errors for the analytics platform.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UnavailableError indicates a required backend is not configured or not reachable.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string { return e.Message }

// StatementError indicates a remote SQL statement finished in FAILED or
// ABORTED state. Message carries the remote error text.
type StatementError struct {
	Status  string
	Message string
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %s: %s", e.Status, e.Message)
}

// StatementTimeoutError indicates a remote statement did not reach a terminal
// status within the polling deadline.
type StatementTimeoutError struct {
	Message string
}

func (e *StatementTimeoutError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnavailable creates an UnavailableError with a formatted message.
func ErrUnavailable(format string, args ...interface{}) *UnavailableError {
	return &UnavailableError{Message: fmt.Sprintf(format, args...)}
}

// ErrStatement creates a StatementError for a terminal non-success status.
func ErrStatement(status, format string, args ...interface{}) *StatementError {
	return &StatementError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrStatementTimeout creates a StatementTimeoutError with a formatted message.
func ErrStatementTimeout(format string, args ...interface{}) *StatementTimeoutError {
	return &StatementTimeoutError{Message: fmt.Sprintf(format, args...)}
}
