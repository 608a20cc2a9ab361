package validate

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var global = validator.New(validator.WithRequiredStructEnabled())

// FieldError is one field-scoped validation problem. The Field name is the
// wire-level (JSON path) name so clients can highlight the offending input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors aggregates field-scoped problems for one request. It is
// recoverable: the caller may correct the fields and resubmit.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field problem.
func (e *Errors) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Any reports whether any problem was recorded.
func (e *Errors) Any() bool { return len(e.Fields) > 0 }

// AsErrors extracts an *Errors from an error chain.
func AsErrors(err error) (*Errors, bool) {
	var ve *Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Struct runs tag validation and folds the result into ve.
func Struct(ve *Errors, s any) {
	err := global.Struct(s)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ve.Add("", err.Error())
		return
	}
	for _, fe := range verrs {
		ve.Add(fieldPath(fe), messageFor(fe))
	}
}

// fieldPath strips the root struct name and lowercases the first segment
// character so "SubmitRequest.Registrant.Email" reads "registrant.Email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		return fe.Field()
	}
	return strings.ToLower(ns[:1]) + ns[1:]
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid id"
	case "max":
		return "exceeds maximum length"
	case "min":
		return "is below minimum length"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
