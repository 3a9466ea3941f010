// Package marshal converts a parameter store plus per-call literal arguments
// into the argument shape of a host entry point, dispatches the call and
// releases every transient host object afterwards.
package marshal

import (
	"context"

	"github.com/reglet-dev/xsd-bridge/application/params"
	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/processor"
)

// FaultChecker runs the post-call exception check.
type FaultChecker interface {
	CheckFault(ctx context.Context) bool
}

// Literal is one always-present argument preceding the array pair.
type Literal struct {
	value string
	null  bool
}

// String is a literal host string argument.
func String(s string) Literal {
	return Literal{value: s}
}

// Null is a literal null argument.
func Null() Literal {
	return Literal{null: true}
}

// OrNull is a string literal, or null when s is empty.
func OrNull(s string) Literal {
	if s == "" {
		return Null()
	}
	return String(s)
}

// IsNull reports whether the literal is the host null.
func (l Literal) IsNull() bool {
	return l.null
}

// Packed is the parallel name/value array pair built from a store.
// Both handles are null when the store was empty.
type Packed struct {
	Names  entities.Handle
	Values entities.Handle
	Size   int

	// transient holds every handle created while packing, arrays included.
	transient []entities.Handle
}

// Release deletes every host object created while packing. Safe to call twice.
func (pk *Packed) Release(ctx context.Context, p *processor.Processor) {
	rt := p.Runtime()
	for _, h := range pk.transient {
		rt.DeleteRef(ctx, h)
	}
	pk.transient = nil
	pk.Names = entities.NullHandle
	pk.Values = entities.NullHandle
}

// Marshaller packs and dispatches calls for one processor.
type Marshaller struct {
	proc   *processor.Processor
	faults FaultChecker
}

// New creates a Marshaller. faults may be nil, in which case no post-call check runs.
func New(p *processor.Processor, faults FaultChecker) *Marshaller {
	return &Marshaller{proc: p, faults: faults}
}

// Pack builds the name and value arrays: all parameters first, then all properties.
// No array is allocated for an empty store.
func (m *Marshaller) Pack(ctx context.Context, store *params.Store) *Packed {
	rt := m.proc.Runtime()
	pk := &Packed{Size: store.Len()}

	m.proc.Logger().DebugContext(ctx, "marshalling call arguments",
		"parameters", len(store.Parameters()),
		"properties", len(store.Properties()),
		"size", pk.Size)

	if pk.Size == 0 {
		return pk
	}

	pk.Names = rt.NewArray(ctx, entities.KindStringArray, pk.Size)
	pk.Values = rt.NewArray(ctx, entities.KindObjectArray, pk.Size)
	pk.transient = append(pk.transient, pk.Names, pk.Values)

	i := 0
	for name, v := range store.Parameters() {
		nameH := rt.NewString(ctx, name)
		pk.transient = append(pk.transient, nameH)
		rt.SetArrayElement(ctx, pk.Names, i, nameH)
		// The value owns its host representation; it is not transient.
		valueH := v.ToHost(ctx, m.proc)
		if valueH.IsNull() {
			m.proc.Logger().DebugContext(ctx, "parameter converted to null", "name", name)
		}
		rt.SetArrayElement(ctx, pk.Values, i, valueH)
		i++
	}
	for name, value := range store.Properties() {
		nameH := rt.NewString(ctx, name)
		valueH := rt.NewString(ctx, value)
		pk.transient = append(pk.transient, nameH, valueH)
		rt.SetArrayElement(ctx, pk.Names, i, nameH)
		rt.SetArrayElement(ctx, pk.Values, i, valueH)
		i++
	}
	return pk
}

// Invoke packs store, calls method on receiver with literals followed by the
// array pair, releases every transient object and runs the fault check.
// It returns the raw result handle, which the caller owns.
func (m *Marshaller) Invoke(ctx context.Context, receiver entities.Handle, method entities.MethodRef, store *params.Store, literals ...Literal) entities.Handle {
	rt := m.proc.Runtime()

	pk := m.Pack(ctx, store)
	args := make([]entities.Handle, 0, len(literals)+2)
	for _, lit := range literals {
		if lit.null {
			args = append(args, entities.NullHandle)
			continue
		}
		h := rt.NewString(ctx, lit.value)
		pk.transient = append(pk.transient, h)
		args = append(args, h)
	}
	args = append(args, pk.Names, pk.Values)

	result := func() entities.Handle {
		defer pk.Release(ctx, m.proc)
		return rt.Call(ctx, receiver, method, args...)
	}()

	if m.faults != nil && m.faults.CheckFault(ctx) {
		m.proc.Logger().DebugContext(ctx, "host call raised an exception", "method", method.String())
	}
	return result
}

// Call invokes an entry point that takes no arguments and runs the fault check.
func (m *Marshaller) Call(ctx context.Context, receiver entities.Handle, method entities.MethodRef) entities.Handle {
	result := m.proc.Runtime().Call(ctx, receiver, method)
	if m.faults != nil {
		m.faults.CheckFault(ctx)
	}
	return result
}
