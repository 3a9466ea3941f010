package xdm

import (
	"context"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
	"github.com/reglet-dev/xsd-bridge/processor"
)

// Sequence is an ordered list of values. It holds a shared count on each item.
type Sequence struct {
	refCount
	rt     ports.HostRuntime
	items  []Value
	handle entities.Handle
}

// NewSequence creates a sequence and takes a reference on every non-nil item.
func NewSequence(items ...Value) *Sequence {
	s := &Sequence{items: make([]Value, 0, len(items))}
	for _, it := range items {
		if it == nil {
			continue
		}
		it.IncRef()
		s.items = append(s.items, it)
	}
	return s
}

// Len returns the number of items.
func (s *Sequence) Len() int {
	return len(s.items)
}

// Item returns the i-th item.
func (s *Sequence) Item(i int) Value {
	return s.items[i]
}

// ToHost builds a host object array holding each item's host representation.
func (s *Sequence) ToHost(ctx context.Context, p *processor.Processor) entities.Handle {
	if s.Destroyed() {
		return entities.NullHandle
	}
	rt := p.Runtime()
	if !s.handle.IsNull() && s.rt == rt {
		return s.handle
	}
	if !s.handle.IsNull() {
		s.rt.DeleteRef(ctx, s.handle)
	}

	s.rt = rt
	s.handle = rt.NewArray(ctx, entities.KindObjectArray, len(s.items))
	for i, it := range s.items {
		rt.SetArrayElement(ctx, s.handle, i, it.ToHost(ctx, p))
	}
	return s.handle
}

// Destroy releases the host array and drops the sequence's reference on each item.
func (s *Sequence) Destroy(ctx context.Context) {
	if !s.markDestroyed() {
		return
	}
	if !s.handle.IsNull() {
		s.rt.DeleteRef(ctx, s.handle)
		s.handle = entities.NullHandle
	}
	for _, it := range s.items {
		Release(ctx, it)
	}
	s.items = nil
}
