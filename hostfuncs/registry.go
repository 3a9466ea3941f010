package hostfuncs

import (
	"context"
	"fmt"
	"slices"
)

// DefaultMaxRequestSize bounds a single guest request (1MB).
const DefaultMaxRequestSize = 1 * 1024 * 1024

// Registry is the fixed set of functions a guest may import. It cannot change
// after NewRegistry, so lookups need no locking.
type Registry struct {
	handlers map[string]Handler
	names    []string
}

type registryBuilder struct {
	handlers   map[string]Handler
	middleware []Middleware
	err        error
}

// RegistryOption configures NewRegistry.
type RegistryOption func(*registryBuilder)

// NewRegistry builds a Registry. Middleware wraps every function regardless
// of option order. It fails on an empty or duplicate function name.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{handlers: make(map[string]Handler)}
	for _, opt := range opts {
		opt(b)
	}
	if b.err != nil {
		return nil, b.err
	}

	r := &Registry{handlers: make(map[string]Handler, len(b.handlers))}
	for name, h := range b.handlers {
		for i := len(b.middleware) - 1; i >= 0; i-- {
			h = b.middleware[i](h)
		}
		r.handlers[name] = h
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)
	return r, nil
}

// Invoke calls function name. An unknown name is answered with a NOT_FOUND response.
func (r *Registry) Invoke(ctx context.Context, name string, request []byte) ([]byte, error) {
	h, ok := r.handlers[name]
	if !ok {
		return Fail(ErrUnknownFunction, "unknown host function: %s", name), nil
	}
	ctx = context.WithValue(ctx, invocationKey{}, Invocation{Function: name, RequestBytes: len(request)})
	return h(ctx, request)
}

// Names returns the sorted function names.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// WithFunction registers h as function name.
func WithFunction(name string, h Handler) RegistryOption {
	return func(b *registryBuilder) {
		if b.err != nil {
			return
		}
		switch {
		case name == "":
			b.err = fmt.Errorf("host function name cannot be empty")
		case h == nil:
			b.err = fmt.Errorf("host function %q has no handler", name)
		default:
			if _, dup := b.handlers[name]; dup {
				b.err = fmt.Errorf("duplicate host function: %q", name)
				return
			}
			b.handlers[name] = h
		}
	}
}

// WithMiddleware appends middleware.
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
