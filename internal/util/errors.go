package util

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common error types for fanout
var (
	// ErrInvalidHandle indicates the pool never produced a usable completion handle
	ErrInvalidHandle = errors.New("invalid completion handle")

	// ErrPoolShutdown indicates the worker pool no longer accepts tasks
	ErrPoolShutdown = errors.New("worker pool is shut down")

	// ErrTaskPanic indicates a task panicked while running on a worker
	ErrTaskPanic = errors.New("task panicked")

	// ErrLifecycleClosed indicates teardown already ran
	ErrLifecycleClosed = errors.New("lifecycle already closed")

	// ErrInvalidConfig indicates a configuration error
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrClusterNotFound indicates a cluster was not found
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrConnectionFailed indicates a connection failure
	ErrConnectionFailed = errors.New("connection failed")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
)

// TaskError ties a task failure to the index of the element it ran for
type TaskError struct {
	Index int
	Err   error
}

// Error implements the error interface
func (e *TaskError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As compatibility
func (e *TaskError) Unwrap() error {
	return e.Err
}

// WrapTaskError wraps an error with its element index
func WrapTaskError(index int, err error) error {
	if err == nil {
		return nil
	}
	return &TaskError{Index: index, Err: err}
}

// ClusterError wraps an error with cluster context
type ClusterError struct {
	ClusterName string
	Err         error
}

// Error implements the error interface
func (e *ClusterError) Error() string {
	return fmt.Sprintf("cluster %q: %v", e.ClusterName, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As compatibility
func (e *ClusterError) Unwrap() error {
	return e.Err
}

// WrapClusterError wraps an error with cluster context
func WrapClusterError(clusterName string, err error) error {
	if err == nil {
		return nil
	}
	return &ClusterError{
		ClusterName: clusterName,
		Err:         err,
	}
}

// MultiError aggregates multiple errors, preserving insertion order
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:", len(m.Errors)))
	for i, err := range m.Errors {
		if i < 10 { // Limit to first 10 errors in the message
			sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
		} else if i == 10 {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more errors", len(m.Errors)-10))
			break
		}
	}
	return sb.String()
}

// Unwrap returns the errors for errors.Is/As compatibility
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add adds an error to the multi-error
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Len returns the number of collected errors
func (m *MultiError) Len() int {
	return len(m.Errors)
}

// Last returns the most recently added error, or nil
func (m *MultiError) Last() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m.Errors[len(m.Errors)-1]
}

// ErrorOrNil returns nil if no errors were added, otherwise returns the MultiError
func (m *MultiError) ErrorOrNil() error {
	if m == nil || len(m.Errors) == 0 {
		return nil
	}
	return m
}

// NewMultiError creates a new MultiError from a slice of errors
// It filters out nil errors
func NewMultiError(errors []error) *MultiError {
	m := &MultiError{
		Errors: make([]error, 0, len(errors)),
	}
	for _, err := range errors {
		if err != nil {
			m.Errors = append(m.Errors, err)
		}
	}
	return m
}

// CombineErrors combines multiple errors into a single error
// Returns nil if all errors are nil
func CombineErrors(errors ...error) error {
	return NewMultiError(errors).ErrorOrNil()
}

// WrapErrorf wraps an error with a formatted message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// IsTimeout checks if an error is a timeout error or an expired deadline
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClusterNotFound)
}

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsTaskPanic checks if an error came from a recovered task panic
func IsTaskPanic(err error) bool {
	return errors.Is(err, ErrTaskPanic)
}

// FriendlyError converts technical errors to user-friendly messages
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case IsTimeout(err):
		return "Operation timed out. Please try again or increase the timeout value with --timeout flag."
	case IsNotFound(err):
		return "Cluster not found. Please check the context name in your kubeconfig."
	case IsConnectionError(err):
		return "Failed to connect to cluster. Please check your kubeconfig and network connectivity."
	case errors.Is(err, ErrPoolShutdown), errors.Is(err, ErrLifecycleClosed):
		return "The executor is shutting down; no new work is accepted."
	case errors.Is(err, ErrInvalidConfig):
		return "Invalid configuration. Please check your config file and command-line flags."
	default:
		return err.Error()
	}
}
