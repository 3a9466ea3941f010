package xdm

import (
	"context"
	"strconv"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
	"github.com/reglet-dev/xsd-bridge/processor"
)

// XML Schema built-in type names used by the atomic constructors.
const (
	TypeString  = "xs:string"
	TypeBoolean = "xs:boolean"
	TypeInteger = "xs:integer"
	TypeDecimal = "xs:decimal"
	TypeDouble  = "xs:double"
	TypeAnyURI  = "xs:anyURI"
	TypeQName   = "xs:QName"
)

// Atomic is a single atomic value identified by type name and lexical form.
type Atomic struct {
	refCount
	rt       ports.HostRuntime
	typeName string
	lexical  string
	handle   entities.Handle
}

// NewAtomic creates an atomic value of an arbitrary built-in type.
func NewAtomic(typeName, lexical string) *Atomic {
	return &Atomic{typeName: typeName, lexical: lexical}
}

// NewString creates an xs:string value.
func NewString(s string) *Atomic {
	return NewAtomic(TypeString, s)
}

// NewBool creates an xs:boolean value.
func NewBool(b bool) *Atomic {
	return NewAtomic(TypeBoolean, strconv.FormatBool(b))
}

// NewInteger creates an xs:integer value.
func NewInteger(n int64) *Atomic {
	return NewAtomic(TypeInteger, strconv.FormatInt(n, 10))
}

// NewDouble creates an xs:double value.
func NewDouble(f float64) *Atomic {
	return NewAtomic(TypeDouble, strconv.FormatFloat(f, 'g', -1, 64))
}

// TypeName returns the XML Schema type name.
func (a *Atomic) TypeName() string {
	return a.typeName
}

// Lexical returns the lexical form.
func (a *Atomic) Lexical() string {
	return a.lexical
}

func (a *Atomic) String() string {
	return a.lexical
}

// ToHost creates the host atomic on first use and reuses it afterwards.
func (a *Atomic) ToHost(ctx context.Context, p *processor.Processor) entities.Handle {
	if a.Destroyed() {
		return entities.NullHandle
	}
	rt := p.Runtime()
	if !a.handle.IsNull() && a.rt == rt {
		return a.handle
	}
	if !a.handle.IsNull() {
		a.rt.DeleteRef(ctx, a.handle)
	}
	a.rt = rt
	a.handle = rt.NewAtomic(ctx, a.typeName, a.lexical)
	return a.handle
}

// Destroy releases the cached host atomic.
func (a *Atomic) Destroy(ctx context.Context) {
	if !a.markDestroyed() {
		return
	}
	if !a.handle.IsNull() {
		a.rt.DeleteRef(ctx, a.handle)
		a.handle = entities.NullHandle
	}
}
