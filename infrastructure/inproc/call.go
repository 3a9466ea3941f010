package inproc

import (
	"errors"
	"fmt"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

// Atomic is the in-process representation of a host atomic value.
type Atomic struct {
	Type    string
	Lexical string
}

// Array is the in-process representation of a host array.
type Array struct {
	Kind  entities.Kind
	Elems []entities.Handle
}

// Call carries the receiver and arguments of a single method invocation.
type Call struct {
	rt       *Runtime
	Receiver any
	Args     []entities.Handle
}

// Runtime returns the runtime the call runs in.
func (c *Call) Runtime() *Runtime {
	return c.rt
}

// Object resolves argument i. It returns nil for the null handle.
func (c *Call) Object(i int) any {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.rt.Resolve(c.Args[i])
}

// IsNull reports whether argument i is the null handle.
func (c *Call) IsNull(i int) bool {
	return i >= len(c.Args) || c.Args[i].IsNull()
}

// String resolves argument i as a string.
func (c *Call) String(i int) (string, bool) {
	s, ok := c.Object(i).(string)
	return s, ok
}

// Strings resolves argument i as a string array. A null array yields nil.
func (c *Call) Strings(i int) []string {
	arr, ok := c.Object(i).(*Array)
	if !ok {
		return nil
	}
	out := make([]string, len(arr.Elems))
	for j, h := range arr.Elems {
		out[j], _ = c.rt.Resolve(h).(string)
	}
	return out
}

// Objects resolves argument i as an object array. A null array yields nil.
func (c *Call) Objects(i int) []any {
	arr, ok := c.Object(i).(*Array)
	if !ok {
		return nil
	}
	out := make([]any, len(arr.Elems))
	for j, h := range arr.Elems {
		out[j] = c.rt.Resolve(h)
	}
	return out
}

// Pairs zips the name array at index names with the value array at index values.
func (c *Call) Pairs(names, values int) map[string]any {
	ns := c.Strings(names)
	vs := c.Objects(values)
	if ns == nil {
		return nil
	}
	out := make(map[string]any, len(ns))
	for j, n := range ns {
		if j < len(vs) {
			out[n] = vs[j]
		}
	}
	return out
}

// Exception is an error a Method returns to raise a host exception with
// explicit (code, message) entries.
type Exception struct {
	Entries []entities.ExceptionEntry
}

// Throw creates a single-entry Exception.
func Throw(code, message string) *Exception {
	return &Exception{Entries: []entities.ExceptionEntry{{Code: code, Message: message}}}
}

// Throwf creates a single-entry Exception with a formatted message.
func Throwf(code, format string, args ...any) *Exception {
	return Throw(code, fmt.Sprintf(format, args...))
}

// Add appends an entry and returns the receiver.
func (e *Exception) Add(code, message string) *Exception {
	e.Entries = append(e.Entries, entities.ExceptionEntry{Code: code, Message: message})
	return e
}

func (e *Exception) Error() string {
	return entities.NewExceptionSnapshot(e.Entries).String()
}

// coder is implemented by errors that carry their own error code.
type coder interface {
	Code() string
}

// entriesFromError translates a Go error into exception entries.
func entriesFromError(err error) []entities.ExceptionEntry {
	var exc *Exception
	if errors.As(err, &exc) && len(exc.Entries) > 0 {
		out := make([]entities.ExceptionEntry, len(exc.Entries))
		copy(out, exc.Entries)
		return out
	}
	code := entities.CodeInternal
	var c coder
	if errors.As(err, &c) && c.Code() != "" {
		code = c.Code()
	}
	return []entities.ExceptionEntry{{Code: code, Message: err.Error()}}
}
