package leave

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("leave request is no longer pending")
	ErrInvalidDecision       = errors.New("decision must be approve or reject")
	ErrBalanceNotProvisioned = errors.New("leave balance not provisioned")
)

const (
	CodeRequiredFields      = "required_fields"
	CodeStartInPast         = "start_in_past"
	CodeEndBeforeStart      = "end_before_start"
	CodeUnknownLeaveType    = "unknown_leave_type"
	CodeInsufficientBalance = "insufficient_balance"
	CodeInsufficientNotice  = "insufficient_notice"
	CodeInvalidInput        = "invalid_input"
)

// ValidationError is a user-correctable problem; Message is shown verbatim.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}
