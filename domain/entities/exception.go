package entities

import "strings"

// ExceptionEntry is one (code, message) pair reported by the host runtime.
type ExceptionEntry struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// ExceptionSnapshot is the ordered list of entries captured from a single host fault.
// A nil snapshot means no fault is held.
type ExceptionSnapshot struct {
	Entries []ExceptionEntry
}

// NewExceptionSnapshot copies entries into a snapshot.
// It returns nil when there is nothing to hold.
func NewExceptionSnapshot(entries []ExceptionEntry) *ExceptionSnapshot {
	if len(entries) == 0 {
		return nil
	}
	cp := make([]ExceptionEntry, len(entries))
	copy(cp, entries)
	return &ExceptionSnapshot{Entries: cp}
}

// Count returns the number of entries; zero for a nil snapshot.
func (s *ExceptionSnapshot) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Code returns the i-th error code.
func (s *ExceptionSnapshot) Code(i int) (string, bool) {
	if s == nil || i < 0 || i >= len(s.Entries) {
		return "", false
	}
	return s.Entries[i].Code, true
}

// Message returns the i-th error message.
func (s *ExceptionSnapshot) Message(i int) (string, bool) {
	if s == nil || i < 0 || i >= len(s.Entries) {
		return "", false
	}
	return s.Entries[i].Message, true
}

// String joins all entries as "code: message" lines.
func (s *ExceptionSnapshot) String() string {
	if s == nil {
		return ""
	}
	lines := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Code == "" {
			lines = append(lines, e.Message)
			continue
		}
		lines = append(lines, e.Code+": "+e.Message)
	}
	return strings.Join(lines, "\n")
}

// Exception codes raised by the bridge's own runtime adapters rather than by
// the validation engine.
const (
	// CodeInternal marks a host method that failed with an uncoded error.
	CodeInternal = "XSDB0000"
	// CodeTrap marks a WASM trap or a failed guest call.
	CodeTrap = "XSDB0001"
	// CodeABI marks a guest that violated the bridge ABI.
	CodeABI = "XSDB0002"
	// CodePanic marks a recovered panic inside an in-process host method.
	CodePanic = "XSDB0003"
	// CodeInvalidCall marks a call with a null receiver or unknown method.
	CodeInvalidCall = "XSDB0004"
)
