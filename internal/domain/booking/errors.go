package booking

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes returned by the booking engine.
const (
	CodeMissingClient          = "MISSING_CLIENT"
	CodeMissingProfessional    = "MISSING_PROFESSIONAL"
	CodeMissingTitle           = "MISSING_TITLE"
	CodeMissingDescription     = "MISSING_DESCRIPTION"
	CodeInvalidTitleLength     = "INVALID_TITLE_LENGTH"
	CodeInvalidDescLength      = "INVALID_DESCRIPTION_LENGTH"
	CodeInvalidUserAssignment  = "INVALID_USER_ASSIGNMENT"
	CodeInvalidEngagementType  = "INVALID_ENGAGEMENT_TYPE"
	CodeInvalidRate            = "INVALID_RATE"
	CodeInvalidDate            = "INVALID_DATE"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeDeleteNotAllowed       = "DELETE_NOT_ALLOWED"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeNoStateChange          = "NO_STATE_CHANGE"
	CodeNoValidUpdates         = "NO_VALID_UPDATES"
	CodeBookingNotFound        = "BOOKING_NOT_FOUND"
	CodeRequirementNotFound    = "REQUIREMENT_NOT_FOUND"
	CodeCreateFailed           = "CREATE_FAILED"
	CodeStatusUpdateFailed     = "STATUS_UPDATE_FAILED"
	CodeUpdateFailed           = "UPDATE_FAILED"
	CodeDeleteFailed           = "DELETE_FAILED"
)

// Error is the typed domain error carried across the engine boundary.
// Code is one of the Code* constants and is stable for API consumers.
type Error struct {
	Code    string
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped infrastructure cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewError creates a domain error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidationError creates a validation-category error.
func NewValidationError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewUnauthorizedError signals that the actor has no right to perform the operation.
func NewUnauthorizedError(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// NewInvalidTransitionError signals a (from, to) pair outside the transition table.
func NewInvalidTransitionError(from, to Status) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition booking from %s to %s", from, to),
	}
}

// NewNoStateChangeError signals a transition to the current status.
func NewNoStateChangeError(status Status) *Error {
	return &Error{
		Code:    CodeNoStateChange,
		Message: fmt.Sprintf("booking is already in status %s", status),
	}
}

// NewNotFoundError signals a missing or soft-deleted booking.
func NewNotFoundError(id string) *Error {
	return &Error{
		Code:    CodeBookingNotFound,
		Message: fmt.Sprintf("booking %s not found", id),
	}
}

// NewDeleteNotAllowedError signals a delete attempt outside the deletion policy.
func NewDeleteNotAllowedError(message string) *Error {
	return &Error{Code: CodeDeleteNotAllowed, Message: message}
}

// NewNoValidUpdatesError signals a patch with no fields the actor may touch.
func NewNoValidUpdatesError() *Error {
	return &Error{Code: CodeNoValidUpdates, Message: "no updatable fields for this role in the request"}
}

// NewInfrastructureError wraps an unexpected storage failure so raw driver
// errors never reach the caller.
func NewInfrastructureError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the domain error code from err, or "" if err is not a
// domain error.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ErrStatusConflict is returned by the repository when a compare-and-swap
// status update finds the row no longer in the expected status.
var ErrStatusConflict = errors.New("booking status changed concurrently")
