package hostfuncs

import (
	"encoding/json"
	"fmt"
)

// ErrorResponse is the body a guest receives when a host function fails.
// A failed host call never traps the guest.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Error kinds carried in ErrorResponse.Error.
const (
	ErrBadRequest      = "VALIDATION_ERROR"
	ErrUnknownFunction = "NOT_FOUND"
	ErrInternal        = "INTERNAL_ERROR"
)

var statusCodes = map[string]int{
	ErrBadRequest:      400,
	ErrUnknownFunction: 404,
	ErrInternal:        500,
}

// Fail encodes an ErrorResponse of the given kind.
func Fail(kind, format string, args ...any) []byte {
	code, ok := statusCodes[kind]
	if !ok {
		kind, code = ErrInternal, statusCodes[ErrInternal]
	}
	// Cannot fail: every field is a string or an int.
	data, _ := json.Marshal(ErrorResponse{Error: kind, Message: fmt.Sprintf(format, args...), Code: code})
	return data
}
