package types

import "fmt"

// ErrorCode classifies a failure surfaced by a stage or the protocol layer.
type ErrorCode string

// Transport error codes
const (
	ErrConnection ErrorCode = "CONNECTION"
	ErrTimeout    ErrorCode = "TIMEOUT"
	ErrTransport  ErrorCode = "TRANSPORT"
)

// Remote and domain error codes
const (
	ErrRemote ErrorCode = "REMOTE"
	ErrDomain ErrorCode = "DOMAIN"
)

// Error represents a structured error with code, message, and metadata.
// Transport and remote errors carry remediation text that callers are
// expected to relay verbatim to the end user.
type Error struct {
	Code        ErrorCode `json:"code"`
	Message     string    `json:"message"`
	Remediation string    `json:"remediation,omitempty"`
	Retryable   bool      `json:"retryable"`
	Cause       error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRemediation attaches operator guidance to the error.
func (e *Error) WithRemediation(text string) *Error {
	e.Remediation = text
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// IsDomain reports whether the error is a stage precondition failure,
// meaning no network call was attempted.
func IsDomain(err error) bool {
	return GetErrorCode(err) == ErrDomain
}
