// Package context converts between Go contexts and the wire format carried by
// calls into the guest engine and by guest-to-host requests.
package context

import (
	stdcontext "context"
	"time"

	"github.com/google/uuid"

	"github.com/reglet-dev/xsd-bridge/wireformat"
)

// contextKey is a type alias for context value keys to avoid collisions.
type contextKey string

// RequestIDKey is the context key for request ID.
const RequestIDKey contextKey = "request_id"

// WithRequestID returns ctx carrying a request ID, generating a fresh one when
// ctx has none.
func WithRequestID(ctx stdcontext.Context) stdcontext.Context {
	if _, ok := RequestID(ctx); ok {
		return ctx
	}
	return stdcontext.WithValue(ctx, RequestIDKey, uuid.NewString())
}

// RequestID returns the request ID carried by ctx.
func RequestID(ctx stdcontext.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDKey).(string)
	return id, ok && id != ""
}

// ContextToWire converts a stdcontext.Context to ContextWireFormat for
// sending to the guest.
func ContextToWire(ctx stdcontext.Context) wireformat.ContextWireFormat {
	wire := wireformat.ContextWireFormat{}

	if deadline, ok := ctx.Deadline(); ok {
		wire.Deadline = &deadline
		if timeout := time.Until(deadline); timeout > 0 {
			wire.TimeoutMs = timeout.Milliseconds()
		}
	}

	select {
	case <-ctx.Done():
		wire.Canceled = true
	default:
	}

	if id, ok := RequestID(ctx); ok {
		wire.RequestID = id
	}
	return wire
}

// WireToContext converts a ContextWireFormat to a stdcontext.Context.
// The returned cancel function must always be called.
func WireToContext(parent stdcontext.Context, wire wireformat.ContextWireFormat) (stdcontext.Context, stdcontext.CancelFunc) {
	if parent == nil {
		parent = stdcontext.Background()
	}

	var (
		ctx    stdcontext.Context
		cancel stdcontext.CancelFunc
	)
	switch {
	case wire.Deadline != nil:
		ctx, cancel = stdcontext.WithDeadline(parent, *wire.Deadline)
	case wire.TimeoutMs > 0:
		ctx, cancel = stdcontext.WithTimeout(parent, time.Duration(wire.TimeoutMs)*time.Millisecond)
	default:
		ctx, cancel = stdcontext.WithCancel(parent)
	}

	if wire.RequestID != "" {
		ctx = stdcontext.WithValue(ctx, RequestIDKey, wire.RequestID)
	}
	if wire.Canceled {
		cancel()
	}
	return ctx, cancel
}
