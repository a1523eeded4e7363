package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies the failures that can occur while resolving a post.
type Kind string

const (
	KindInvalidInput         Kind = "invalid_input"
	KindCredentialsRequired  Kind = "credentials_required"
	KindVerificationRequired Kind = "verification_required"
	KindUpstream             Kind = "upstream"
	KindContentGated         Kind = "content_gated"
	KindNotFound             Kind = "not_found"
	KindDataShape            Kind = "data_shape"
	KindUnknown              Kind = "unknown"
)

// Error is a classified API error. Code carries the HTTP status when one
// was observed, 0 otherwise.
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// New builds a classified error without an HTTP status.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCode builds a classified error carrying an HTTP status code.
func WithCode(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Message: message, Code: code}
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsTerminal reports whether err should never trigger a recovery attempt.
// Only a gated-content failure has a recovery path (one login + retry); every
// other kind ends the invocation.
func IsTerminal(err error) bool {
	return KindOf(err) != KindContentGated
}
