// Package domainerrors provides coded errors for the service layer. Services
// translate infrastructure sentinels into these; transports map codes onto
// HTTP statuses. Codes are stable strings so callers can branch without
// matching message text.
package domainerrors

import "errors"

type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnknownCategory    Code = "unknown_category"
	CodeUnknownStatus      Code = "unknown_status"
	CodeInvalidTransition  Code = "invalid_transition"
	CodeStageIncomplete    Code = "stage_incomplete"
	CodeStageCompleted     Code = "stage_already_completed"
	CodeDocumentNotPending Code = "document_not_pending"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Error carries a code, a human-readable message, optional structured details
// (legal next statuses, blocking document ids), and the wrapped cause.
type Error struct {
	Code    Code
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with no cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails returns a copy of the error carrying structured detail strings.
func (e *Error) WithDetails(details ...string) *Error {
	clone := *e
	clone.Details = append([]string(nil), details...)
	return &clone
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf extracts structured details, if any.
func DetailsOf(err error) []string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}
