package entities

import "fmt"

// ErrorDetail is the structured form of a bridge error, as written to JSON
// output. Type is one of "precondition", "entry_point", "host_fault",
// "config", "abi" or "internal".
type ErrorDetail struct {
	Details map[string]any `json:"details,omitempty"`
	Type    string         `json:"type"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message"`
}

// NewErrorDetail creates an ErrorDetail of the given type.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{Type: errorType, Message: message}
}

// Error formats the detail as "type [code]: message". Internal errors print
// the bare message.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	if e.Type == "" || e.Type == "internal" {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Type, e.Code, e.Message)
	}
	return e.Type + ": " + e.Message
}

// WithDetails attaches details and returns the receiver.
func (e *ErrorDetail) WithDetails(details map[string]any) *ErrorDetail {
	e.Details = details
	return e
}

// WithCode attaches a code and returns the receiver.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}
