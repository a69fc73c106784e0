/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package errors

import "fmt"

// ErrorCode classifies provisioning failures for programmatic handling.
type ErrorCode string

const (
	// ErrCodeConfiguration indicates an invalid resource set: a cyclic or
	// missing dependency, or a spec that fails validation. Never retried;
	// the operator must fix the configuration before re-invoking.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
	// ErrCodeInstallation indicates a host command exited non-zero. Fatal
	// for the current run; safe to re-invoke because idempotency predicates
	// skip already-successful steps.
	ErrCodeInstallation ErrorCode = "INSTALLATION"
	// ErrCodeDetection indicates an idempotency predicate could not be
	// evaluated, so the engine cannot tell whether a step is satisfied.
	ErrCodeDetection ErrorCode = "DETECTION"
	// ErrCodeConnectivity indicates the cluster API or credential file is
	// unreachable. Transient; surfaced as retryable via operator re-run.
	ErrCodeConnectivity ErrorCode = "CONNECTIVITY"
	// ErrCodeConflict indicates an attempt to mutate an immutable field of a
	// bound object. Requires explicit operator remediation.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better
// observability. It includes an error code for programmatic handling, a
// human-readable message, the underlying cause, and optional context.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the ErrorCode carried by err, walking the wrap chain.
// Errors without a StructuredError in the chain report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if se, ok := err.(*StructuredError); ok {
			return se.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrCodeInternal
}

// IsRetryable reports whether a subsequent run may succeed without operator
// intervention. Only connectivity and timeout failures qualify; configuration,
// installation, and conflict errors need the operator first.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeConnectivity, ErrCodeTimeout:
		return true
	default:
		return false
	}
}
