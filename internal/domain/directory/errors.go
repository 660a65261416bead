package directory

import "errors"

var (
	ErrNotFound  = errors.New("user not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("email or employee id already exists")

	ErrDepartmentExists = errors.New("department already exists")
)

const (
	CodeRequiredFields   = "required_fields"
	CodeInvalidField     = "invalid_field"
	CodeSelfDeactivation = "self_deactivation"
	CodePasswordMismatch = "password_mismatch"
	CodePasswordTooShort = "password_too_short"
	CodeWrongPassword    = "wrong_password"
)

// ValidationError is shown to the caller as is. Fields maps json field names
// to the rule that failed.
type ValidationError struct {
	Code    string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}
