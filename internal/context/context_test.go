package context

import (
	stdcontext "context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/wireformat"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(stdcontext.Background())
	id, ok := RequestID(ctx)
	require.True(t, ok)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	// an existing ID is kept
	again := WithRequestID(ctx)
	id2, _ := RequestID(again)
	assert.Equal(t, id, id2)
}

func TestContextToWire(t *testing.T) {
	ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), time.Minute)
	defer cancel()
	ctx = stdcontext.WithValue(ctx, RequestIDKey, "req-1")

	wire := ContextToWire(ctx)
	require.NotNil(t, wire.Deadline)
	assert.Positive(t, wire.TimeoutMs)
	assert.Equal(t, "req-1", wire.RequestID)
	assert.False(t, wire.Canceled)

	cancel()
	assert.True(t, ContextToWire(ctx).Canceled)
}

func TestWireToContext(t *testing.T) {
	deadline := time.Now().Add(time.Hour)
	ctx, cancel := WireToContext(nil, wireformat.ContextWireFormat{Deadline: &deadline, RequestID: "req-2"})
	defer cancel()

	got, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, deadline, got, time.Millisecond)
	id, _ := RequestID(ctx)
	assert.Equal(t, "req-2", id)

	canceled, cancel2 := WireToContext(stdcontext.Background(), wireformat.ContextWireFormat{Canceled: true})
	defer cancel2()
	assert.Error(t, canceled.Err())
}
