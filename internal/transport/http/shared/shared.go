// Package shared holds the JSON envelope helpers every handler uses, so the
// wire shape of errors is decided in exactly one place.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/validate"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message,omitempty"`
	Fields  []validate.FieldError `json:"fields,omitempty"`
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error to an HTTP response. Uncoded errors
// become opaque 500s so no internal detail leaks.
func WriteError(w http.ResponseWriter, err error) {
	if ve, ok := validate.AsErrors(err); ok {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   string(dErrors.CodeValidation),
			Message: "validation failed",
			Fields:  ve.Fields,
		})
		return
	}

	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code), Message: dErrors.MessageOf(err)}
	if code == dErrors.CodeInternal {
		// Internal detail stays in the logs.
		resp.Message = "internal error"
	}
	WriteJSON(w, statusFor(code), resp)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeTokenInvalid:
		return http.StatusUnprocessableEntity
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
