// Package xdm provides the dynamic values exchanged with the host runtime:
// atomic values, sequences and the nodes returned by validation calls.
//
// Values are shared between the bridge and their other holders through an
// explicit reference count. The count starts at zero; every holder that keeps
// a value calls IncRef and later DecRef, and whoever drops the count below one
// calls Destroy to release the host-side object.
package xdm

import (
	"context"
	"sync/atomic"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/processor"
)

// Value is a dynamic value that can be passed to the host runtime.
type Value interface {
	// ToHost returns the host representation of the value. The returned handle
	// is owned by the value and stays valid until Destroy.
	ToHost(ctx context.Context, p *processor.Processor) entities.Handle

	// IncRef increments the shared count and returns the new count.
	IncRef() int32

	// DecRef decrements the shared count and returns the new count.
	DecRef() int32

	// RefCount returns the current shared count.
	RefCount() int32

	// Destroy releases host-side resources. It is idempotent.
	Destroy(ctx context.Context)

	// Destroyed reports whether Destroy has run.
	Destroyed() bool
}

// refCount is the shared-count bookkeeping embedded by every Value.
type refCount struct {
	refs      atomic.Int32
	destroyed atomic.Bool
}

func (r *refCount) IncRef() int32 {
	return r.refs.Add(1)
}

func (r *refCount) DecRef() int32 {
	return r.refs.Add(-1)
}

func (r *refCount) RefCount() int32 {
	return r.refs.Load()
}

func (r *refCount) Destroyed() bool {
	return r.destroyed.Load()
}

// markDestroyed reports whether this call performed the transition.
func (r *refCount) markDestroyed() bool {
	return r.destroyed.CompareAndSwap(false, true)
}

// Release decrements v and destroys it once no holder is left.
// It reports whether v was destroyed.
func Release(ctx context.Context, v Value) bool {
	if v == nil {
		return false
	}
	if v.DecRef() < 1 {
		v.Destroy(ctx)
		return true
	}
	return false
}
