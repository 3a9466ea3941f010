// Package abi implements the host side of the packed pointer/length calling
// convention spoken by guest engines: copying payloads into guest memory
// through the guest's allocator and reading guest responses back out.
package abi

import (
	"context"
	"errors"
	"fmt"
)

// PtrHighBits is the shift of the pointer half of a packed value.
const PtrHighBits = 32

// ErrNullPointer is returned for a packed value with a null pointer and a non-zero length.
var ErrNullPointer = errors.New("abi: null pointer with non-zero length")

// Memory is the subset of a guest's linear memory the host needs.
// wazero's api.Memory satisfies it.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
}

// Function is a callable guest export. wazero's api.Function satisfies it.
type Function interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its pointer and length. Packed values
// come from the guest, so an invalid combination is an error, not a panic.
func UnpackPtrLen(packed uint64) (ptr, length uint32, err error) {
	ptr = uint32(packed >> PtrHighBits) //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed)             //nolint:gosec // G115: Packed format stores 32-bit values
	if ptr == 0 && length > 0 {
		return 0, 0, ErrNullPointer
	}
	return ptr, length, nil
}

// Guest moves payloads across one guest instance's memory.
type Guest struct {
	mem        Memory
	allocate   Function
	deallocate Function
	maxRead    uint32
}

// DefaultMaxRead bounds a single guest response (16MB).
const DefaultMaxRead = 16 * 1024 * 1024

// NewGuest wraps a guest memory and its allocate/deallocate exports.
func NewGuest(mem Memory, allocate, deallocate Function) (*Guest, error) {
	if mem == nil {
		return nil, errors.New("abi: guest exports no memory")
	}
	if allocate == nil {
		return nil, errors.New("abi: guest does not export 'allocate'")
	}
	if deallocate == nil {
		return nil, errors.New("abi: guest does not export 'deallocate'")
	}
	return &Guest{mem: mem, allocate: allocate, deallocate: deallocate, maxRead: DefaultMaxRead}, nil
}

// Write copies data into freshly allocated guest memory and returns the packed
// pointer and length. Empty data packs to 0 without allocating.
func (g *Guest) Write(ctx context.Context, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	res, err := g.allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(res) == 0 {
		return 0, errors.New("allocate returned no results")
	}
	ptr := uint32(res[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if ptr == 0 {
		return 0, errors.New("allocate returned a null pointer")
	}
	if !g.mem.Write(ptr, data) {
		return 0, errors.New("failed to write input to guest memory")
	}
	return PackPtrLen(ptr, uint32(len(data))), nil //nolint:gosec // G115: bounded by allocate
}

// Read copies the region named by packed out of guest memory. A zero packed
// value yields nil.
func (g *Guest) Read(packed uint64) ([]byte, error) {
	ptr, length, err := UnpackPtrLen(packed)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	if length > g.maxRead {
		return nil, fmt.Errorf("abi: response size %d exceeds maximum %d bytes", length, g.maxRead)
	}
	data, ok := g.mem.Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("abi: region %#x+%d is out of guest memory", ptr, length)
	}
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}

// Free returns the region named by packed to the guest allocator.
func (g *Guest) Free(ctx context.Context, packed uint64) error {
	ptr, length, err := UnpackPtrLen(packed)
	if err != nil || ptr == 0 {
		return err
	}
	if _, err := g.deallocate.Call(ctx, uint64(ptr), uint64(length)); err != nil {
		return fmt.Errorf("failed to deallocate in guest: %w", err)
	}
	return nil
}

// Take reads the region named by packed and frees it.
func (g *Guest) Take(ctx context.Context, packed uint64) ([]byte, error) {
	data, err := g.Read(packed)
	if err != nil {
		return nil, err
	}
	if err := g.Free(ctx, packed); err != nil {
		return nil, err
	}
	return data, nil
}
