// Package errors provides the bridge's typed errors.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by error types that can describe themselves
// as a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// PreconditionError reports a missing or empty required argument.
// The operation that returned it made no host call.
type PreconditionError struct {
	Operation string
	Argument  string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s cannot be empty", e.Operation, e.Argument)
}

// ToErrorDetail implements DetailedError.
func (e *PreconditionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "precondition", Code: e.Argument}
}

// EntryPointError reports a host entry point that could not be resolved.
type EntryPointError struct {
	Err       error
	Class     string
	Name      string
	Signature string
}

func (e *EntryPointError) Error() string {
	msg := fmt.Sprintf("entry point %s.%s%s not found", e.Class, e.Name, e.Signature)
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *EntryPointError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *EntryPointError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "entry_point", Code: e.Name}
}

// HostFaultError presents a captured exception snapshot as a Go error.
type HostFaultError struct {
	Snapshot *entities.ExceptionSnapshot
}

func (e *HostFaultError) Error() string {
	n := e.Snapshot.Count()
	if n == 0 {
		return "host fault"
	}
	first := e.Snapshot.Entries[0]
	msg := first.Message
	if first.Code != "" {
		msg = fmt.Sprintf("[%s] %s", first.Code, first.Message)
	}
	if n > 1 {
		return fmt.Sprintf("host fault: %s (and %d more)", msg, n-1)
	}
	return "host fault: " + msg
}

// ToErrorDetail implements DetailedError.
func (e *HostFaultError) ToErrorDetail() *entities.ErrorDetail {
	detail := entities.NewErrorDetail("host_fault", e.Error())
	if code, ok := e.Snapshot.Code(0); ok {
		detail.WithCode(code)
	}
	if n := e.Snapshot.Count(); n > 1 {
		entries := make([]map[string]string, 0, n)
		for _, en := range e.Snapshot.Entries {
			entries = append(entries, map[string]string{"code": en.Code, "message": en.Message})
		}
		detail.WithDetails(map[string]any{"entries": entries})
	}
	return detail
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// ABIError reports a guest that violated the WASM bridge ABI.
type ABIError struct {
	Err    error
	Export string
}

func (e *ABIError) Error() string {
	return fmt.Sprintf("guest export %q: %v", e.Export, e.Err)
}

func (e *ABIError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ABIError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "abi", Code: e.Export}
}
