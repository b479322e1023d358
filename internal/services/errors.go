package services

import "fmt"

// ErrorCode classifies a failed chat or history operation. Every failure is
// terminal for its request; no code implies an automatic retry.
type ErrorCode string

const (
	ErrorValidation ErrorCode = "VALIDATION_ERROR"
	ErrorStorage    ErrorCode = "STORAGE_ERROR"
	ErrorGateway    ErrorCode = "GATEWAY_ERROR"
)

// Error is the structured failure returned by the service layer. Reason is a
// short machine-readable tag safe to surface to clients; Err is the wrapped
// cause, logged server-side only.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("services: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("services: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
