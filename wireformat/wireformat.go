// Package wireformat defines the JSON wire format structures exchanged with a
// guest validation engine over the WASM boundary. These types must remain
// stable and backward compatible as they define the ABI contract.
package wireformat

import (
	"fmt"
	"time"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

// ContextWireFormat is the JSON wire format for context.Context propagation.
type ContextWireFormat struct {
	Deadline  *time.Time `json:"deadline,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	TimeoutMs int64      `json:"timeout_ms,omitempty"`
	Canceled  bool       `json:"canceled,omitempty"`
}

// FindClassWire is the request of xsdb_find_class.
type FindClassWire struct {
	Name string `json:"name"`
}

// ClassWire is the response of xsdb_find_class. ID 0 means not found.
type ClassWire struct {
	Error *ErrorDetail `json:"error,omitempty"`
	Name  string       `json:"name"`
	ID    uint64       `json:"id"`
}

// MethodLookupWire is the request of xsdb_lookup_method.
type MethodLookupWire struct {
	Class     string `json:"class"`
	Name      string `json:"name"`
	Signature string `json:"signature"`
	ClassID   uint64 `json:"class_id"`
}

// MethodWire is the response of xsdb_lookup_method. ID 0 means not found.
type MethodWire struct {
	ID uint64 `json:"id"`
}

// NewObjectWire is the request of xsdb_new_object.
type NewObjectWire struct {
	Signature string            `json:"signature"`
	Args      []uint64          `json:"args,omitempty"`
	ClassID   uint64            `json:"class_id"`
	Context   ContextWireFormat `json:"context"`
}

// AtomicWire is the request of xsdb_new_atomic.
type AtomicWire struct {
	Type    string `json:"type"`
	Lexical string `json:"lexical"`
}

// StringWire is the response of xsdb_get_string. OK is false for null and
// non-string handles.
type StringWire struct {
	Value string `json:"value"`
	OK    bool   `json:"ok"`
}

// CallWire is the request of xsdb_call.
type CallWire struct {
	Args     []uint64          `json:"args,omitempty"`
	Receiver uint64            `json:"receiver"`
	MethodID uint64            `json:"method_id"`
	Context  ContextWireFormat `json:"context"`
}

// ExceptionWire is the response of xsdb_exception_describe.
type ExceptionWire struct {
	Entries []entities.ExceptionEntry `json:"entries"`
}

// ReadResourceRequest is the JSON wire format for a resource read from Guest to Host.
type ReadResourceRequest struct {
	Path    string            `json:"path"`
	Context ContextWireFormat `json:"context"`
}

// ReadResourceResponse is the JSON wire format for a resource read response from Host to Guest.
type ReadResourceResponse struct {
	Error     *ErrorDetail `json:"error,omitempty"`
	Path      string       `json:"path,omitempty"`
	Data      []byte       `json:"data,omitempty"`
	Truncated bool         `json:"truncated,omitempty"`
}

// Array kind codes passed to xsdb_new_array.
const (
	ArrayKindStrings int32 = 1
	ArrayKindObjects int32 = 2
)

// ArrayKindCode maps an array kind to its wire code. It reports false for
// non-array kinds.
func ArrayKindCode(k entities.Kind) (int32, bool) {
	switch k {
	case entities.KindStringArray:
		return ArrayKindStrings, true
	case entities.KindObjectArray:
		return ArrayKindObjects, true
	default:
		return 0, false
	}
}

// ArrayKind maps a wire code back to its array kind.
func ArrayKind(code int32) (entities.Kind, bool) {
	switch code {
	case ArrayKindStrings:
		return entities.KindStringArray, true
	case ArrayKindObjects:
		return entities.KindObjectArray, true
	default:
		return "", false
	}
}

// Handles converts bridge handles to their wire form.
func Handles(hs []entities.Handle) []uint64 {
	if len(hs) == 0 {
		return nil
	}
	out := make([]uint64, len(hs))
	for i, h := range hs {
		out[i] = uint64(h)
	}
	return out
}

// ErrorDetail provides structured error information, consistent across host and guest.
// Error Types: "timeout", "config", "panic", "validation", "not_found", "internal"
type ErrorDetail struct {
	Wrapped    *ErrorDetail `json:"wrapped,omitempty"`
	Message    string       `json:"message"`
	Type       string       `json:"type"`
	Code       string       `json:"code"`
	IsTimeout  bool         `json:"is_timeout,omitempty"`
	IsNotFound bool         `json:"is_not_found,omitempty"`
}

// Error implements the error interface for ErrorDetail.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}
