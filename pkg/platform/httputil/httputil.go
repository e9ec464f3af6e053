// Package httputil maps domain errors onto HTTP responses so handlers stay thin.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "sahaya/pkg/domain-errors"
)

// ErrorBody is the JSON error envelope. Details carry structured context such
// as legal next statuses or blocking document ids.
type ErrorBody struct {
	Error            string   `json:"error"`
	ErrorDescription string   `json:"error_description,omitempty"`
	Details          []string `json:"details,omitempty"`
}

// WriteJSON writes v with the given status. Encoding failures are swallowed;
// by then the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps the error's code to an HTTP status. Internal errors omit the
// description so infrastructure detail never leaks to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := ErrorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.ErrorDescription = err.Error()
		body.Details = dErrors.DetailsOf(err)
	}
	WriteJSON(w, statusFor(code), body)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeUnknownCategory, dErrors.CodeUnknownStatus:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	// CodeStageCompleted is normally intercepted by the complete-stage
	// handler and answered as a success-equivalent 200; any other path
	// reports the race as a conflict rather than a server error.
	case dErrors.CodeConflict, dErrors.CodeInvariantViolation, dErrors.CodeStageCompleted:
		return http.StatusConflict
	case dErrors.CodeInvalidTransition, dErrors.CodeStageIncomplete, dErrors.CodeDocumentNotPending:
		return http.StatusUnprocessableEntity
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
