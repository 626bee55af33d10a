package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies failures so callers can branch without string matching
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeTransport  ErrorType = "transport"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeServer     ErrorType = "server"
	ErrorTypePermission ErrorType = "permission"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a classified failure with the originating HTTP status.
// Code is 0 for transport failures (the request never reached the server
// or timed out), so a 403 can be special-cased by callers.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a classified error with no HTTP status attached.
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Transport wraps a network-level failure. Timeouts and connection
// refusals are indistinguishable to callers.
func Transport(message string) *Error {
	return &Error{Type: ErrorTypeTransport, Message: message, Code: 0}
}

// FromStatusCode maps a non-2xx backend response to a classified error.
// The detail message comes from the server when its body was parsable.
func FromStatusCode(code int, detail string) *Error {
	t := ErrorTypeUnknown
	switch {
	case code == 422:
		t = ErrorTypeValidation
		if detail == "" {
			detail = "invalid URL"
		}
	case code == 403:
		t = ErrorTypeAuth
		if detail == "" {
			detail = "private content, login required"
		}
	case code == 404:
		t = ErrorTypeNotFound
		if detail == "" {
			detail = "content not found"
		}
	case code >= 500:
		t = ErrorTypeServer
		if detail == "" {
			detail = "server error, retry later"
		}
	default:
		if detail == "" {
			detail = fmt.Sprintf("unexpected status code: %d", code)
		}
	}
	return &Error{Type: t, Message: detail, Code: code}
}

// IsAuthError reports whether err is a 403 authorization failure, the
// case that should offer the login flow.
func IsAuthError(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Type == ErrorTypeAuth
}

// IsTransportError reports whether the request never got a response.
func IsTransportError(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Type == ErrorTypeTransport
}

// UserMessage returns the human-readable message for display. Classified
// errors carry a message written for end users; anything else falls back
// to the raw error text.
func UserMessage(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// StatusCode extracts the HTTP status carried by err, or -1 when err is
// not a classified error.
func StatusCode(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return -1
}
