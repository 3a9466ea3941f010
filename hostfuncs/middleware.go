package hostfuncs

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps every Handler of a Registry. The first middleware given to
// WithMiddleware is the outermost.
type Middleware func(next Handler) Handler

type invocationKey struct{}

// Invocation describes the host function call in progress.
type Invocation struct {
	Function     string
	RequestBytes int
}

// InvocationFrom returns the call in progress when ctx comes from Registry.Invoke.
func InvocationFrom(ctx context.Context) (Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}

// RecoverPanics answers a panicking handler with an INTERNAL_ERROR response.
func RecoverPanics() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, request []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp, err = Fail(ErrInternal, "panic: %v", r), nil
				}
			}()
			return next(ctx, request)
		}
	}
}

// LogCalls logs every call at Debug and failed calls at Error.
func LogCalls(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, request []byte) ([]byte, error) {
			inv, _ := InvocationFrom(ctx)
			start := time.Now()
			resp, err := next(ctx, request)
			attrs := []slog.Attr{
				slog.String("function", inv.Function),
				slog.Int("request_bytes", len(request)),
				slog.Int("response_bytes", len(resp)),
				slog.Duration("elapsed", time.Since(start)),
			}
			if err != nil {
				logger.LogAttrs(ctx, slog.LevelError, "host function failed", append(attrs, slog.Any("error", err))...)
				return resp, err
			}
			logger.LogAttrs(ctx, slog.LevelDebug, "host function served", attrs...)
			return resp, nil
		}
	}
}
