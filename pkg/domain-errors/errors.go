package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. Services attach codes at the point where an
// infrastructure fact or validation outcome becomes a domain-level decision;
// the transport layer translates codes to HTTP statuses.
type Code string

const (
	// CodeValidation marks field-scoped input failures. Recoverable: the
	// caller may correct the fields and resubmit.
	CodeValidation Code = "validation_failed"

	// CodeInvalidInput marks a malformed domain primitive (identifier, id).
	CodeInvalidInput Code = "invalid_input"

	// CodeTokenInvalid marks a token that failed authenticated decryption or
	// whose decrypted payload is not schema-conformant. Fail-closed: no
	// partially trusted payload ever accompanies this code.
	CodeTokenInvalid Code = "token_invalid"

	// CodeNotFound marks a lookup of an entity that does not exist, including
	// a cryptographically valid token referencing a deleted registration.
	CodeNotFound Code = "not_found"

	// CodeConflict marks a state transition rejected by the current state.
	CodeConflict Code = "conflict"

	// CodeKeyMaterial marks absent or malformed token key configuration.
	// Fatal: blocks all token operations.
	CodeKeyMaterial Code = "key_material"

	// CodeUnauthorized marks a missing or invalid staff credential.
	CodeUnauthorized Code = "unauthorized"

	// CodeInternal marks storage or downstream failures whose detail is
	// logged but not exposed verbatim to callers.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. Field is set only for CodeValidation errors
// so handlers can report field-scoped problems.
type Error struct {
	Code    Code
	Message string
	Field   string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewField creates a validation error scoped to a single field.
func NewField(field, message string) error {
	return &Error{Code: CodeValidation, Message: message, Field: field}
}

// Wrap attaches a code and message to an underlying error. The cause stays
// reachable through errors.Is/errors.As for logging; callers see the message.
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

// Is is a readability alias for HasCode used at call sites that branch on
// error class.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so unexpected failures never leak detail outward.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-safe message, or the raw error text for
// uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// FieldOf returns the field name for validation errors, or "".
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}
