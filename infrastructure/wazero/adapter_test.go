package wazero

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/hostfuncs"
	"github.com/reglet-dev/xsd-bridge/internal/testutil"
)

func TestDefaultAdapterConfig(t *testing.T) {
	cfg := defaultAdapterConfig()

	assert.Equal(t, "xsd_host", cfg.ModuleName)
	assert.Equal(t, uint32(hostfuncs.DefaultMaxRequestSize), cfg.MaxRequestSize)
}

func TestAdapterOptions(t *testing.T) {
	cfg := defaultAdapterConfig()
	WithModuleName("custom_module")(&cfg)
	WithMaxRequestSize(2048)(&cfg)
	WithCustomHandler(CustomHandler{Name: "test_handler"})(&cfg)

	assert.Equal(t, "custom_module", cfg.ModuleName)
	assert.Equal(t, uint32(2048), cfg.MaxRequestSize)
	require.Len(t, cfg.CustomHandlers, 1)
	assert.Equal(t, "test_handler", cfg.CustomHandlers[0].Name)
}

func TestLogHandler(t *testing.T) {
	h := LogHandler("log_message", func(context.Context, []byte) {})
	assert.Equal(t, "log_message", h.Name)
	assert.Len(t, h.ParamTypes, 1)
	assert.Empty(t, h.ResultTypes)
	assert.NotNil(t, h.Handler)
}

func echo(_ context.Context, req []byte) ([]byte, error) {
	return append([]byte("echo:"), req...), nil
}

func TestServe_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewGuestMemory(1024)
	req := mem.Put([]byte("ping"))

	packed := serve(ctx, mem, mem.Allocate(), req, echo, 64)

	require.NotZero(t, packed)
	assert.Equal(t, "echo:ping", string(mem.Get(packed)))
	// The request stays owned by the guest; the response is a new guest allocation.
	assert.Len(t, mem.Live, 2)
}

func decodeError(t *testing.T, data []byte) hostfuncs.ErrorResponse {
	t.Helper()
	var resp hostfuncs.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func TestServe_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("request too large", func(t *testing.T) {
		mem := testutil.NewGuestMemory(1024)
		req := mem.Put([]byte("0123456789"))
		resp := decodeError(t, mem.Get(serve(ctx, mem, mem.Allocate(), req, echo, 4)))
		assert.Equal(t, "VALIDATION_ERROR", resp.Error)
		assert.Contains(t, resp.Message, "exceeds maximum 4 bytes")
	})

	t.Run("null pointer", func(t *testing.T) {
		mem := testutil.NewGuestMemory(1024)
		resp := decodeError(t, mem.Get(serve(ctx, mem, mem.Allocate(), 5, echo, 64)))
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("out of memory bounds", func(t *testing.T) {
		mem := testutil.NewGuestMemory(1024)
		req := uint64(1000)<<32 | 50
		resp := decodeError(t, mem.Get(serve(ctx, mem, mem.Allocate(), req, echo, 64)))
		assert.Equal(t, "INTERNAL_ERROR", resp.Error)
	})

	t.Run("handler error", func(t *testing.T) {
		mem := testutil.NewGuestMemory(1024)
		failing := func(context.Context, []byte) ([]byte, error) { return nil, errors.New("boom") }
		resp := decodeError(t, mem.Get(serve(ctx, mem, mem.Allocate(), mem.Put([]byte("x")), failing, 64)))
		assert.Equal(t, "boom", resp.Message)
	})

	t.Run("missing allocate", func(t *testing.T) {
		mem := testutil.NewGuestMemory(1024)
		assert.Zero(t, serve(ctx, mem, nil, mem.Put([]byte("x")), echo, 64))
	})
}

func TestServe_EmptyRequest(t *testing.T) {
	mem := testutil.NewGuestMemory(1024)
	var got []byte
	invoke := func(_ context.Context, req []byte) ([]byte, error) {
		got = req
		return []byte("{}"), nil
	}
	packed := serve(context.Background(), mem, mem.Allocate(), 0, invoke, 64)
	assert.Nil(t, got)
	assert.Equal(t, "{}", string(mem.Get(packed)))
}

func TestReadRequest(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewGuestMemory(1024)

	data, ok := readRequest(ctx, mem, mem.Put([]byte("record")), 64)
	require.True(t, ok)
	assert.Equal(t, "record", string(data))

	_, ok = readRequest(ctx, mem, 0, 64)
	assert.False(t, ok)

	_, ok = readRequest(ctx, mem, mem.Put([]byte("too long")), 3)
	assert.False(t, ok)
}

func TestGuestName(t *testing.T) {
	ctx := context.Background()
	_, ok := GuestNameFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, GuestName(ctx, nil))

	ctx = WithGuestName(ctx, "engine.wasm")
	name, ok := GuestNameFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "engine.wasm", name)
	assert.Equal(t, "engine.wasm", GuestName(ctx, nil))
}
