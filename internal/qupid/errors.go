package qupid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes a failed analysis attempt
type ErrorKind string

const (
	// KindNoFilesSelected means a run was requested with an empty selection
	KindNoFilesSelected ErrorKind = "no_files_selected"

	// KindTransportFailure covers requests that never produced a response
	KindTransportFailure ErrorKind = "transport_failure"

	// KindServerFailure covers responses that are not a usable result
	KindServerFailure ErrorKind = "server_failure"
)

// User-facing messages
const (
	MessageNoFiles     = "please upload up to 10 screenshots of your conversation."
	MessageUnreachable = "unable to reach the quantum backend."
)

// Error is a failed analysis attempt. Message is shown to the user as is.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("kind=%s", e.Kind)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Detail returns the message followed by the cause when one exists
func (e *Error) Detail() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s (%v)", e.Message, e.Cause)
}

// Sentinels usable with errors.Is
var (
	ErrNoFilesSelected  = &Error{Kind: KindNoFilesSelected}
	ErrTransportFailure = &Error{Kind: KindTransportFailure}
	ErrServerFailure    = &Error{Kind: KindServerFailure}
)

// NewNoFilesError builds the error for an empty selection
func NewNoFilesError() *Error {
	return &Error{Kind: KindNoFilesSelected, Message: MessageNoFiles}
}

// NewTransportError wraps a failure to get any response
func NewTransportError(message string, cause error) *Error {
	if message == "" {
		message = MessageUnreachable
	}
	return &Error{Kind: KindTransportFailure, Message: message, Cause: cause}
}

// NewServerError builds a failure from a response. An empty message falls
// back to the generic one.
func NewServerError(status int, message string, cause error) *Error {
	if strings.TrimSpace(message) == "" {
		message = MessageUnreachable
	}
	return &Error{Kind: KindServerFailure, Message: message, StatusCode: status, Cause: cause}
}

// KindOf returns the kind of err, or "" when err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// Message extracts the user-facing text of err. Errors that are not *Error
// are treated as transport failures.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return MessageUnreachable
}
