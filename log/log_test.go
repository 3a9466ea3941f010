package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xcontext "github.com/reglet-dev/xsd-bridge/internal/context"
	"github.com/reglet-dev/xsd-bridge/internal/testutil"
)

func TestToLogAttrWire(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		wantType string
		wantVal  string
	}{
		{
			name:     "string",
			attr:     slog.String("key", "value"),
			wantType: "string",
			wantVal:  "value",
		},
		{
			name:     "int64",
			attr:     slog.Int64("key", 123),
			wantType: "int64",
			wantVal:  "123",
		},
		{
			name:     "bool",
			attr:     slog.Bool("key", true),
			wantType: "bool",
			wantVal:  "true",
		},
		{
			name:     "float64",
			attr:     slog.Float64("key", 1.23),
			wantType: "float64",
			wantVal:  "1.230000",
		},
		{
			name:     "time",
			attr:     slog.Time("key", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantType: "time",
			wantVal:  "2024-01-01T00:00:00Z",
		},
		{
			name:     "duration",
			attr:     slog.Duration("key", 1*time.Hour),
			wantType: "duration",
			wantVal:  "1h0m0s",
		},
		{
			name:     "error",
			attr:     slog.Any("key", errors.New("test error")),
			wantType: "error",
			wantVal:  "test error",
		},
		{
			name:     "nil",
			attr:     slog.Any("key", nil),
			wantType: "any",
			wantVal:  "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := toLogAttrWire(tt.attr)
			assert.Equal(t, tt.attr.Key, wire.Key)
			assert.Equal(t, tt.wantType, wire.Type)
			assert.Equal(t, tt.wantVal, wire.Value)
		})
	}
}

func TestToLogAttrWire_JSON(t *testing.T) {
	// Test structured object that should be serialized as JSON
	type MyStruct struct {
		Field string `json:"field"`
	}
	obj := MyStruct{Field: "data"}
	attr := slog.Any("key", obj)

	wire := toLogAttrWire(attr)
	assert.Equal(t, "key", wire.Key)
	assert.Equal(t, "json", wire.Type)

	var decoded MyStruct
	err := json.Unmarshal([]byte(wire.Value), &decoded)
	require.NoError(t, err)
	assert.Equal(t, obj, decoded)
}

func TestToLogAttrWire_LogValuer(t *testing.T) {
	// Test types that implement LogValuer
	attr := slog.Any("key", logValuer{val: "resolved"})
	wire := toLogAttrWire(attr)

	assert.Equal(t, "key", wire.Key)
	assert.Equal(t, "string", wire.Type)
	assert.Equal(t, "resolved", wire.Value)
}

type logValuer struct {
	val string
}

func (l logValuer) LogValue() slog.Value {
	return slog.StringValue(l.val)
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler(func(context.Context, []byte) {})
	assert.NotNil(t, h)
	// Check default level via Enabled
	assert.True(t, h.Enabled(context.TODO(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.TODO(), slog.LevelDebug))
}

func TestNewHandler_Options(t *testing.T) {
	var payloads [][]byte
	h := NewHandler(func(_ context.Context, p []byte) { payloads = append(payloads, p) },
		WithLevel(slog.LevelDebug),
		WithSource(true),
	)
	assert.True(t, h.Enabled(context.TODO(), slog.LevelDebug))

	slog.New(h).Debug("compiled", "schemas", 2)
	require.Len(t, payloads, 1)

	var msg LogMessageWire
	require.NoError(t, json.Unmarshal(payloads[0], &msg))
	assert.Equal(t, "DEBUG", msg.Level)
	require.Len(t, msg.Attrs, 2)
	assert.Equal(t, "source", msg.Attrs[0].Key)
	assert.Contains(t, msg.Attrs[0].Value, "log_test.go:")
	assert.Equal(t, LogAttrWire{Key: "schemas", Type: "int64", Value: "2"}, msg.Attrs[1])
}

func TestWireHandler_AttrsAndGroups(t *testing.T) {
	var payload []byte
	h := NewHandler(func(_ context.Context, p []byte) { payload = p })

	logger := slog.New(h).With("engine", "xsd").WithGroup("schema").With("uri", "a.xsd")
	logger.Info("loaded", "size", 10)

	var msg LogMessageWire
	require.NoError(t, json.Unmarshal(payload, &msg))
	keys := make([]string, len(msg.Attrs))
	for i, a := range msg.Attrs {
		keys[i] = a.Key
	}
	assert.Equal(t, []string{"engine", "schema.uri", "schema.size"}, keys)
}

func TestRelay_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	host := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	relay := NewRelay(host, "engine.wasm")

	guest := slog.New(NewHandler(relay.Handle))
	ctx := context.WithValue(context.Background(), xcontext.RequestIDKey, "req-9")
	guest.WarnContext(ctx, "schema has warnings", "count", 3, "strict", true)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	testutil.AssertMapContains(t, map[string]any{
		"level":      "WARN",
		"msg":        "schema has warnings",
		"guest":      "engine.wasm",
		"request_id": "req-9",
		"count":      float64(3),
		"strict":     true,
	}, out)
}

func TestRelay_RawPayload(t *testing.T) {
	var buf bytes.Buffer
	relay := NewRelay(slog.New(slog.NewTextHandler(&buf, nil)), "g")
	relay.Handle(context.Background(), []byte("not json"))
	assert.Contains(t, buf.String(), "guest log (raw)")
	assert.Contains(t, buf.String(), "not json")
}

func TestRelay_FiltersByHostLevel(t *testing.T) {
	var buf bytes.Buffer
	relay := NewRelay(slog.New(slog.NewTextHandler(&buf, nil)), "g")
	slog.New(NewHandler(relay.Handle, WithLevel(slog.LevelDebug))).Debug("noisy")
	assert.Empty(t, buf.String())
}

func TestFromLogAttrWire(t *testing.T) {
	tests := []struct {
		wire LogAttrWire
		want slog.Value
	}{
		{LogAttrWire{Key: "k", Type: "int64", Value: "5"}, slog.Int64Value(5)},
		{LogAttrWire{Key: "k", Type: "bool", Value: "false"}, slog.BoolValue(false)},
		{LogAttrWire{Key: "k", Type: "duration", Value: "2s"}, slog.DurationValue(2 * time.Second)},
		{LogAttrWire{Key: "k", Type: "int64", Value: "x"}, slog.StringValue("x")},
		{LogAttrWire{Key: "k", Type: "error", Value: "boom"}, slog.StringValue("boom")},
	}
	for _, tt := range tests {
		got := fromLogAttrWire(tt.wire)
		assert.Equal(t, "k", got.Key)
		assert.True(t, tt.want.Equal(got.Value), "%s: got %v", tt.wire.Type, got.Value)
	}
}
