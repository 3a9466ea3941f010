// Package exception tracks host runtime faults for one validator.
//
// The bridge is either clean or faulted. After every host call CheckFault
// captures the pending host exception into a snapshot and clears it in the
// host, so it cannot surface again on the next unrelated call. Clear returns
// the bridge to the clean state.
package exception

import (
	"context"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	bridgeerrors "github.com/reglet-dev/xsd-bridge/domain/errors"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
)

// undescribed stands in for a pending host exception that came with no entries.
var undescribed = entities.ExceptionEntry{
	Code:    entities.CodeInternal,
	Message: "host raised an exception without details",
}

// describe returns the host's pending entries, or the undescribed placeholder
// when the host reports a pending exception but describes nothing.
func describe(ctx context.Context, rt ports.HostRuntime, pending bool) []entities.ExceptionEntry {
	entries := rt.DescribeException(ctx)
	if pending && len(entries) == 0 {
		return []entities.ExceptionEntry{undescribed}
	}
	return entries
}

// Bridge owns the exception snapshot of a single validator.
type Bridge struct {
	rt       ports.HostRuntime
	snapshot *entities.ExceptionSnapshot
}

// NewBridge creates a clean Bridge.
func NewBridge(rt ports.HostRuntime) *Bridge {
	return &Bridge{rt: rt}
}

// CheckFault is the post-call step. When the host has a pending exception or a
// snapshot is already held, the old snapshot is dropped, a fresh one is
// captured and the host state is cleared. It reports whether a fault is now held.
func (b *Bridge) CheckFault(ctx context.Context) bool {
	pending := b.rt.ExceptionCheck(ctx)
	if !pending && b.snapshot == nil {
		return false
	}
	b.snapshot = entities.NewExceptionSnapshot(describe(ctx, b.rt, pending))
	b.rt.ExceptionClear(ctx)
	return b.snapshot != nil
}

// Clear drops the snapshot and the host's pending exception.
func (b *Bridge) Clear(ctx context.Context) {
	b.snapshot = nil
	b.rt.ExceptionClear(ctx)
}

// Occurred reports whether the host has a pending exception or a snapshot is held.
func (b *Bridge) Occurred(ctx context.Context) bool {
	return b.rt.ExceptionCheck(ctx) || b.snapshot != nil
}

// Count returns the number of entries in the held snapshot.
func (b *Bridge) Count() int {
	return b.snapshot.Count()
}

// Code returns the i-th error code of the held snapshot.
func (b *Bridge) Code(i int) (string, bool) {
	return b.snapshot.Code(i)
}

// Message returns the i-th error message of the held snapshot.
func (b *Bridge) Message(i int) (string, bool) {
	return b.snapshot.Message(i)
}

// Snapshot returns the held snapshot, nil when clean.
func (b *Bridge) Snapshot() *entities.ExceptionSnapshot {
	return b.snapshot
}

// Probe reads the host's pending exception without touching the snapshot or
// clearing the host state. It returns "" when nothing is pending.
func (b *Bridge) Probe(ctx context.Context) string {
	if !b.rt.ExceptionCheck(ctx) {
		return ""
	}
	return entities.NewExceptionSnapshot(describe(ctx, b.rt, true)).String()
}

// Err returns the held snapshot as an error, nil when clean.
func (b *Bridge) Err() error {
	if b.snapshot == nil {
		return nil
	}
	return &bridgeerrors.HostFaultError{Snapshot: b.snapshot}
}
