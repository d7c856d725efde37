package shared

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrVersionConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrCheckInProgress = NewDomainError("CHECK_IN_PROGRESS", "A position check is already running")
)

// ---------------------------------------------------------------------------
// ValidationError
// ---------------------------------------------------------------------------

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match any validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ---------------------------------------------------------------------------
// UpstreamError
// ---------------------------------------------------------------------------

// UpstreamError reports an unreachable or non-successful upstream service.
// Status is 0 when no HTTP response was received.
type UpstreamError struct {
	Status  int
	Body    string
	Message string
	Cause   error
}

// NewUpstreamFailure wraps a transport-level failure.
func NewUpstreamFailure(message string, cause error) *UpstreamError {
	return &UpstreamError{Message: message, Cause: cause}
}

// NewUpstreamStatus builds an error for a non-2xx upstream response.
func NewUpstreamStatus(status int, body string) *UpstreamError {
	return &UpstreamError{Status: status, Body: body, Message: "unexpected upstream status"}
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	b.WriteString("upstream: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString("request failed")
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(truncate(e.Body, 512))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// ---------------------------------------------------------------------------
// PersistenceError
// ---------------------------------------------------------------------------

// PersistenceError reports a stored blob that could not be decoded.
// Version is the store version of that blob, so a caller can overwrite it.
type PersistenceError struct {
	Key     string
	Version int64
	Cause   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: malformed blob %q: %v", e.Key, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether err carries a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUpstream reports whether err carries an UpstreamError
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsPersistence reports whether err carries a PersistenceError
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
