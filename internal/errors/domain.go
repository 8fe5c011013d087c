package errors

import "fmt"

// DomainError is the error type every component (C1–C10) returns for a
// business-rule failure. The HTTP layer translates it directly into an
// Envelope via NewEnvelope; internal callers match on Code.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs a DomainError.
func New(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Newf constructs a DomainError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, defaulting to ErrUnexpected for
// any error that did not originate as a DomainError (an unmapped error
// reaching the HTTP boundary is itself a defect, but must still surface as
// a well-formed 500 rather than leak internals).
func CodeOf(err error) ErrorCode {
	if de, ok := err.(*DomainError); ok {
		return de.Code
	}
	return ErrUnexpected
}
