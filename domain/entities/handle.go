package entities

import "fmt"

// Handle is an opaque reference to an object living inside the host runtime.
// The zero Handle is the host's null reference.
type Handle uint64

// NullHandle is the host null reference.
const NullHandle Handle = 0

// IsNull reports whether h is the host null reference.
func (h Handle) IsNull() bool {
	return h == NullHandle
}

func (h Handle) String() string {
	if h.IsNull() {
		return "null"
	}
	return fmt.Sprintf("handle#%d", uint64(h))
}

// ClassRef identifies a class resolved through the host runtime.
type ClassRef struct {
	Name string
	ID   uint64
}

// IsZero reports whether the class reference was never resolved.
func (c ClassRef) IsZero() bool {
	return c.ID == 0
}

// MethodRef identifies a host entry point resolved by name and signature.
type MethodRef struct {
	Class     ClassRef
	Name      string
	Signature Signature
	ID        uint64
}

// IsZero reports whether the method reference was never resolved.
func (m MethodRef) IsZero() bool {
	return m.ID == 0
}

func (m MethodRef) String() string {
	return m.Class.Name + "." + m.Name + m.Signature.String()
}
