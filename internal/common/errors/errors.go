// internal/common/errors/errors.go
// Package errors provides standardized error handling for the
// classification core and its HTTP surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Evidence-source failures are recovered locally by falling back to a
	// lower-tier signal; they never surface to the caller.
	ErrCodeEvidenceUnavailable ErrorCode = "EVIDENCE_UNAVAILABLE"

	// Review session failures abort the requested operation.
	ErrCodeUnknownSession   ErrorCode = "UNKNOWN_SESSION"
	ErrCodeUnknownItem      ErrorCode = "UNKNOWN_ITEM"
	ErrCodeDuplicateSession ErrorCode = "DUPLICATE_SESSION"

	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeInternalCompute ErrorCode = "INTERNAL_COMPUTE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewEvidenceUnavailableError creates a retryable evidence-source error.
func NewEvidenceUnavailableError(source string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeEvidenceUnavailable,
		Message:   fmt.Sprintf("Evidence source '%s' unavailable", source),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownSessionError creates a non-retryable session lookup error.
// Absent, expired and already-closed sessions all map here.
func NewUnknownSessionError(requestID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSession,
		Message:   "No open review session for request",
		Details:   fmt.Sprintf("requestId: %s", requestID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownItemError creates a non-retryable correction error for a
// name absent from the session's uncertain set.
func NewUnknownItemError(requestID, name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownItem,
		Message:   "Correction names an item not pending review",
		Details:   fmt.Sprintf("requestId: %s, item: %s", requestID, name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateSessionError creates a non-retryable session open error.
func NewDuplicateSessionError(requestID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateSession,
		Message:   "A review session is already open for request",
		Details:   fmt.Sprintf("requestId: %s", requestID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable request validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalComputeError wraps an unexpected arithmetic or state fault.
// Never retried automatically by the core.
func NewInternalComputeError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternalCompute,
		Message:   "Internal computation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the ErrorCode from err, or ErrCodeInternalCompute if
// err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternalCompute
}

// HTTPStatus maps an error code to its client-facing HTTP status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnknownSession:
		return http.StatusNotFound
	case ErrCodeUnknownItem:
		return http.StatusUnprocessableEntity
	case ErrCodeDuplicateSession:
		return http.StatusConflict
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
