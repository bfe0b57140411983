// Package domainerrors defines the coded error type shared by services and the
// HTTP layer. Services attach a Code so transport can pick a status and a
// retrying caller can tell "try again later" from "never try again" without
// parsing messages.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeBadRequest covers malformed or missing input.
	CodeBadRequest Code = "bad_request"
	// CodeValidation covers input that parsed but fails a business rule.
	CodeValidation Code = "validation"
	// CodeUnauthorized covers missing or invalid authentication.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden covers authenticated callers lacking permission.
	CodeForbidden Code = "forbidden"
	// CodePaymentRequired covers sessions whose fee has not been observed.
	CodePaymentRequired Code = "payment_required"
	// CodeNotFound covers entities the caller asked for that do not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict covers replayed sessions, duplicate pendings, and
	// already-assigned checkmarks.
	CodeConflict Code = "conflict"
	// CodeBanned is a terminal policy rejection. Never retryable.
	CodeBanned Code = "banned"
	// CodeRetryLater signals the caller should redeliver; nothing is wrong,
	// the outcome just is not terminal yet.
	CodeRetryLater Code = "retry_later"
	// CodeUpstreamUnavailable covers failed provider or ledger calls. The
	// whole request is safe to retry.
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	// CodeInvariantViolation marks states the key space should never reach.
	// Surfaced as a server error; should page an operator.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal is the catch-all for unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err returns nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer should use.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodePaymentRequired:
		return http.StatusPaymentRequired
	case CodeForbidden, CodeBanned:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRetryLater:
		return http.StatusAccepted
	case CodeUpstreamUnavailable:
		return http.StatusBadGateway
	case CodeInvariantViolation, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
