package abi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/internal/abi"
	"github.com/reglet-dev/xsd-bridge/internal/testutil"
)

func TestPackPtrLen(t *testing.T) {
	tests := []struct {
		name   string
		ptr    uint32
		length uint32
		want   uint64
	}{
		{
			name:   "typical values",
			ptr:    0x12345678,
			length: 0xABCDEF00,
			want:   (uint64(0x12345678) << abi.PtrHighBits) | uint64(0xABCDEF00),
		},
		{
			name:   "zero pointer zero length",
			ptr:    0,
			length: 0,
			want:   0,
		},
		{
			name:   "max pointer",
			ptr:    0xFFFFFFFF,
			length: 1,
			want:   (uint64(0xFFFFFFFF) << abi.PtrHighBits) | 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := abi.PackPtrLen(tt.ptr, tt.length)
			assert.Equal(t, tt.want, packed, "packed value mismatch")

			gotPtr, gotLen, err := abi.UnpackPtrLen(packed)
			require.NoError(t, err)
			assert.Equal(t, tt.ptr, gotPtr, "unpacked pointer mismatch")
			assert.Equal(t, tt.length, gotLen, "unpacked length mismatch")
		})
	}
}

func TestPackPtrLen_PanicsOnNullPointerWithLength(t *testing.T) {
	assert.Panics(t, func() {
		abi.PackPtrLen(0, 100)
	}, "expected panic for null pointer with non-zero length")
}

func TestUnpackPtrLen_NullPointerWithLength(t *testing.T) {
	_, _, err := abi.UnpackPtrLen(100)
	assert.ErrorIs(t, err, abi.ErrNullPointer)
}

func newGuest(t *testing.T, mem *testutil.GuestMemory) *abi.Guest {
	t.Helper()
	g, err := abi.NewGuest(mem, mem.Allocate(), mem.Deallocate())
	require.NoError(t, err)
	return g
}

func TestNewGuest_MissingExports(t *testing.T) {
	mem := testutil.NewGuestMemory(64)
	_, err := abi.NewGuest(mem, nil, mem.Deallocate())
	assert.ErrorContains(t, err, "allocate")
	_, err = abi.NewGuest(mem, mem.Allocate(), nil)
	assert.ErrorContains(t, err, "deallocate")
}

func TestGuest_WriteReadFree(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewGuestMemory(1024)
	g := newGuest(t, mem)

	packed, err := g.Write(ctx, []byte("hello"))
	require.NoError(t, err)
	require.Len(t, mem.Live, 1)

	data, err := g.Read(packed)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, g.Free(ctx, packed))
	assert.Empty(t, mem.Live)
}

func TestGuest_EmptyPayloads(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewGuestMemory(64)
	g := newGuest(t, mem)

	packed, err := g.Write(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, packed)
	assert.Empty(t, mem.Live)

	data, err := g.Read(0)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, g.Free(ctx, 0))
}

func TestGuest_Take(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewGuestMemory(64)
	g := newGuest(t, mem)

	packed := mem.Put([]byte(`{"id":1}`))
	data, err := g.Take(ctx, packed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(data))
	assert.Empty(t, mem.Live)
}

func TestGuest_Errors(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewGuestMemory(16)
	g := newGuest(t, mem)

	_, err := g.Write(ctx, make([]byte, 64))
	assert.ErrorContains(t, err, "failed to allocate")

	_, err = g.Read(abi.PackPtrLen(8, 1024))
	assert.ErrorContains(t, err, "out of guest memory")

	failing := testutil.Func(func(context.Context, ...uint64) ([]uint64, error) {
		return nil, errors.New("trap")
	})
	g2, err := abi.NewGuest(mem, mem.Allocate(), failing)
	require.NoError(t, err)
	assert.ErrorContains(t, g2.Free(ctx, abi.PackPtrLen(8, 1)), "failed to deallocate")
}
