// Package log carries structured log records across the WASM boundary: guest
// engines encode slog records as LogMessageWire JSON and the host relays them
// into its own slog.Logger.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"

	xcontext "github.com/reglet-dev/xsd-bridge/internal/context"
)

// Sink receives one encoded LogMessageWire.
type Sink func(ctx context.Context, payload []byte)

// WireHandler implements slog.Handler by encoding records to LogMessageWire
// JSON and handing them to a Sink. Go guests use it to route their logs to the
// host's log_message function.
type WireHandler struct {
	sink   Sink
	attrs  []LogAttrWire
	group  string
	config handlerConfig
}

// HandlerOption configures the WireHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level are filtered before encoding.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file:line) as a "source" attribute.
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a new WireHandler writing to sink.
func NewHandler(sink Sink, opts ...HandlerOption) *WireHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WireHandler{sink: sink, config: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *WireHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.config.level
}

// Handle encodes record and passes it to the sink.
func (h *WireHandler) Handle(ctx context.Context, record slog.Record) error {
	msg := LogMessageWire{
		Context:   xcontext.ContextToWire(ctx),
		Level:     record.Level.String(),
		Message:   record.Message,
		Timestamp: record.Time,
	}
	msg.Attrs = append(msg.Attrs, h.attrs...)
	if h.config.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		f, _ := frames.Next()
		msg.Attrs = append(msg.Attrs, LogAttrWire{Key: "source", Type: "string", Value: fmt.Sprintf("%s:%d", f.File, f.Line)})
	}
	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = append(msg.Attrs, h.wire(attr))
		return true
	})

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal log message: %w", err)
	}
	h.sink(ctx, payload)
	return nil
}

func (h *WireHandler) wire(attr slog.Attr) LogAttrWire {
	w := toLogAttrWire(attr)
	if h.group != "" {
		w.Key = h.group + "." + w.Key
	}
	return w
}

// WithAttrs returns a new WireHandler that includes the given attributes.
func (h *WireHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]LogAttrWire, len(h.attrs), len(h.attrs)+len(attrs))
	copy(next.attrs, h.attrs)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.wire(a))
	}
	return &next
}

// WithGroup returns a new WireHandler that prefixes later attribute keys with name.
func (h *WireHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	next.group = name
	return &next
}
