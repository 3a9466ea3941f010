package testutil

import (
	"context"
	"fmt"
)

// Func adapts a Go function to a callable guest export.
type Func func(ctx context.Context, params ...uint64) ([]uint64, error)

// Call invokes f.
func (f Func) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	return f(ctx, params...)
}

// GuestMemory is a linear memory with a bump allocator, standing in for the
// memory and allocator exports of a guest module.
type GuestMemory struct {
	buf  []byte
	next uint32
	// Live maps every allocated pointer to its size until it is deallocated.
	Live map[uint32]uint32
}

// NewGuestMemory creates a memory of size bytes. Address 0 is never handed out.
func NewGuestMemory(size int) *GuestMemory {
	return &GuestMemory{buf: make([]byte, size), next: 8, Live: make(map[uint32]uint32)}
}

// Read implements abi.Memory.
func (m *GuestMemory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[offset:end], true
}

// Write implements abi.Memory.
func (m *GuestMemory) Write(offset uint32, v []byte) bool {
	end := uint64(offset) + uint64(len(v))
	if end > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[offset:], v)
	return true
}

func (m *GuestMemory) alloc(size uint32) (uint32, error) {
	if uint64(m.next)+uint64(size) > uint64(len(m.buf)) {
		return 0, fmt.Errorf("guest out of memory allocating %d bytes", size)
	}
	ptr := m.next
	m.next += size
	m.Live[ptr] = size
	return ptr, nil
}

// Allocate is the guest's allocate export.
func (m *GuestMemory) Allocate() Func {
	return func(_ context.Context, params ...uint64) ([]uint64, error) {
		ptr, err := m.alloc(uint32(params[0])) //nolint:gosec // test memory
		if err != nil {
			return nil, err
		}
		return []uint64{uint64(ptr)}, nil
	}
}

// Deallocate is the guest's deallocate export.
func (m *GuestMemory) Deallocate() Func {
	return func(_ context.Context, params ...uint64) ([]uint64, error) {
		delete(m.Live, uint32(params[0])) //nolint:gosec // test memory
		return nil, nil
	}
}

// Put stores data as a guest-side allocation and returns its packed pointer and length.
func (m *GuestMemory) Put(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	ptr, err := m.alloc(uint32(len(data))) //nolint:gosec // test memory
	if err != nil {
		panic(err)
	}
	copy(m.buf[ptr:], data)
	return uint64(ptr)<<32 | uint64(len(data))
}

// Get returns a copy of the region named by packed.
func (m *GuestMemory) Get(packed uint64) []byte {
	ptr, length := uint32(packed>>32), uint32(packed) //nolint:gosec // test memory
	out := make([]byte, length)
	copy(out, m.buf[ptr:ptr+length])
	return out
}
