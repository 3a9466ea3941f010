// Package inproc provides an in-process host runtime: the validation engine is
// a set of Go classes registered up front, objects live in a handle table and
// failures are reported through a sticky exception state, exactly as a
// managed runtime would report them.
package inproc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
)

var _ ports.HostRuntime = (*Runtime)(nil)

// object is one live entry of the handle table.
type object struct {
	value any
	class *classEntry
}

// Runtime is an in-process HostRuntime. Its class set is immutable after
// NewRuntime. It is not safe for concurrent use.
type Runtime struct {
	logger  *slog.Logger
	classes map[string]*classEntry
	methods map[uint64]*methodEntry
	objects map[entities.Handle]*object
	pending []entities.ExceptionEntry
	names   []string
	nextID  uint64
}

// runtimeBuilder accumulates configuration during runtime construction.
type runtimeBuilder struct {
	logger     *slog.Logger
	classes    []*ClassDef
	middleware []Middleware
}

// Option configures a Runtime.
type Option func(*runtimeBuilder)

// WithClass registers a class.
func WithClass(defs ...*ClassDef) Option {
	return func(b *runtimeBuilder) {
		b.classes = append(b.classes, defs...)
	}
}

// WithMiddleware wraps every method and constructor.
func WithMiddleware(mw ...Middleware) Option {
	return func(b *runtimeBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// WithLogger sets the logger used for runtime diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *runtimeBuilder) {
		b.logger = l
	}
}

// NewRuntime creates a Runtime. It fails on duplicate class names or invalid
// class declarations.
func NewRuntime(opts ...Option) (*Runtime, error) {
	b := &runtimeBuilder{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}

	rt := &Runtime{
		logger:  b.logger,
		classes: make(map[string]*classEntry),
		methods: make(map[uint64]*methodEntry),
		objects: make(map[entities.Handle]*object),
	}

	for _, def := range b.classes {
		if def.name == "" {
			return nil, fmt.Errorf("class name cannot be empty")
		}
		if len(def.errs) > 0 {
			return nil, def.errs[0]
		}
		if _, exists := rt.classes[def.name]; exists {
			return nil, fmt.Errorf("duplicate class name: %q", def.name)
		}
		rt.classes[def.name] = &classEntry{
			def: def,
			ref: entities.ClassRef{Name: def.name, ID: rt.allocID()},
		}
		rt.names = append(rt.names, def.name)
	}
	sort.Strings(rt.names)

	if len(b.middleware) > 0 {
		for _, ce := range rt.classes {
			ce.def = wrapClass(ce.def, b.middleware)
		}
	}
	return rt, nil
}

// wrapClass applies middleware to a copy of def so the caller's declaration stays untouched.
func wrapClass(def *ClassDef, mw []Middleware) *ClassDef {
	wrap := func(fn Method) Method {
		for i := len(mw) - 1; i >= 0; i-- {
			fn = mw[i](fn)
		}
		return fn
	}
	out := NewClass(def.name)
	for k, fn := range def.ctors {
		out.ctors[k] = wrap(fn)
	}
	for k, fn := range def.methods {
		out.methods[k] = wrap(fn)
	}
	return out
}

// ClassNames returns the sorted names of all registered classes.
func (r *Runtime) ClassNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Runtime) allocID() uint64 {
	r.nextID++
	return r.nextID
}

func (r *Runtime) store(v any, class *classEntry) entities.Handle {
	if v == nil {
		return entities.NullHandle
	}
	h := entities.Handle(r.allocID())
	r.objects[h] = &object{value: v, class: class}
	return h
}

// Resolve returns the Go value behind h, or nil for null and released handles.
func (r *Runtime) Resolve(h entities.Handle) any {
	if o, ok := r.objects[h]; ok {
		return o.value
	}
	return nil
}

// NewNode stores value as a node object, for binding Go documents as source nodes.
// The caller owns the returned handle.
func (r *Runtime) NewNode(value any) entities.Handle {
	if value == nil {
		return entities.NullHandle
	}
	return r.store(&NodeValue{Value: value}, r.classes[entities.NodeClassName])
}

// Live returns the number of handles currently in the table.
func (r *Runtime) Live() int {
	return len(r.objects)
}

// Throw raises a host exception, replacing any pending one.
func (r *Runtime) Throw(entries ...entities.ExceptionEntry) {
	r.pending = append([]entities.ExceptionEntry(nil), entries...)
}

// FindClass implements ports.HostRuntime.
func (r *Runtime) FindClass(_ context.Context, name string) (entities.ClassRef, error) {
	ce, ok := r.classes[name]
	if !ok {
		return entities.ClassRef{}, fmt.Errorf("class %q not found", name)
	}
	return ce.ref, nil
}

// LookupMethod implements ports.HostRuntime.
func (r *Runtime) LookupMethod(_ context.Context, class entities.ClassRef, name string, sig entities.Signature) (entities.MethodRef, bool) {
	ce, ok := r.classes[class.Name]
	if !ok || ce.ref.ID != class.ID {
		return entities.MethodRef{}, false
	}
	fn, ok := ce.def.methods[methodKey(name, sig)]
	if !ok {
		return entities.MethodRef{}, false
	}
	return r.registerMethod(ce, name, sig, fn, false), true
}

func (r *Runtime) registerMethod(ce *classEntry, name string, sig entities.Signature, fn Method, ctor bool) entities.MethodRef {
	ref := entities.MethodRef{Class: ce.ref, Name: name, Signature: sig, ID: r.allocID()}
	r.methods[ref.ID] = &methodEntry{class: ce, fn: fn, ref: ref, ctor: ctor}
	return ref
}

// NewObject implements ports.HostRuntime.
func (r *Runtime) NewObject(ctx context.Context, class entities.ClassRef, ctor entities.Signature, args ...entities.Handle) entities.Handle {
	ce, ok := r.classes[class.Name]
	if !ok {
		r.Throw(entities.ExceptionEntry{Code: entities.CodeInvalidCall, Message: fmt.Sprintf("class %q not found", class.Name)})
		return entities.NullHandle
	}
	fn, ok := ce.def.ctors[ctor.String()]
	if !ok {
		r.Throw(entities.ExceptionEntry{
			Code:    entities.CodeInvalidCall,
			Message: fmt.Sprintf("no constructor %s%s", class.Name, ctor.String()),
		})
		return entities.NullHandle
	}
	v, ok := r.invoke(ctx, fn, &Call{rt: r, Args: args}, class.Name+".<init>")
	if !ok {
		return entities.NullHandle
	}
	return r.store(v, ce)
}

// Call implements ports.HostRuntime.
func (r *Runtime) Call(ctx context.Context, receiver entities.Handle, method entities.MethodRef, args ...entities.Handle) entities.Handle {
	me, ok := r.methods[method.ID]
	if !ok || me.ctor {
		r.Throw(entities.ExceptionEntry{Code: entities.CodeInvalidCall, Message: "unknown method " + method.String()})
		return entities.NullHandle
	}
	recv, ok := r.objects[receiver]
	if !ok {
		r.Throw(entities.ExceptionEntry{Code: entities.CodeInvalidCall, Message: "null receiver for " + method.String()})
		return entities.NullHandle
	}
	if recv.class != nil && recv.class != me.class {
		r.Throw(entities.ExceptionEntry{
			Code:    entities.CodeInvalidCall,
			Message: fmt.Sprintf("receiver is a %s, not a %s", recv.class.ref.Name, me.class.ref.Name),
		})
		return entities.NullHandle
	}

	v, ok := r.invoke(ctx, me.fn, &Call{rt: r, Receiver: recv.value, Args: args}, method.String())
	if !ok {
		return entities.NullHandle
	}
	if h, isHandle := v.(entities.Handle); isHandle {
		return h
	}
	return r.store(v, nil)
}

// invoke runs fn, converting returned errors and panics into pending exceptions.
func (r *Runtime) invoke(ctx context.Context, fn Method, call *Call, name string) (v any, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "inproc: host method panicked", "method", name, "panic", rec)
			r.Throw(entities.ExceptionEntry{Code: entities.CodePanic, Message: fmt.Sprintf("panic: %v", rec)})
			v, ok = nil, false
		}
	}()

	v, err := fn(ctx, call)
	if err != nil {
		r.Throw(entriesFromError(err)...)
		return nil, false
	}
	return v, true
}

// NewString implements ports.HostRuntime.
func (r *Runtime) NewString(_ context.Context, s string) entities.Handle {
	h := entities.Handle(r.allocID())
	r.objects[h] = &object{value: s}
	return h
}

// GetString implements ports.HostRuntime.
func (r *Runtime) GetString(_ context.Context, h entities.Handle) (string, bool) {
	s, ok := r.Resolve(h).(string)
	return s, ok
}

// NewAtomic implements ports.HostRuntime.
func (r *Runtime) NewAtomic(_ context.Context, typeName, lexical string) entities.Handle {
	return r.store(Atomic{Type: typeName, Lexical: lexical}, nil)
}

// NewArray implements ports.HostRuntime.
func (r *Runtime) NewArray(_ context.Context, kind entities.Kind, length int) entities.Handle {
	if !kind.IsArray() || length < 0 {
		r.Throw(entities.ExceptionEntry{
			Code:    entities.CodeInvalidCall,
			Message: fmt.Sprintf("invalid array %s of length %d", kind, length),
		})
		return entities.NullHandle
	}
	return r.store(&Array{Kind: kind, Elems: make([]entities.Handle, length)}, nil)
}

// SetArrayElement implements ports.HostRuntime.
func (r *Runtime) SetArrayElement(_ context.Context, array entities.Handle, index int, value entities.Handle) {
	arr, ok := r.Resolve(array).(*Array)
	if !ok {
		r.Throw(entities.ExceptionEntry{Code: entities.CodeInvalidCall, Message: "not an array: " + array.String()})
		return
	}
	if index < 0 || index >= len(arr.Elems) {
		r.Throw(entities.ExceptionEntry{
			Code:    entities.CodeInvalidCall,
			Message: fmt.Sprintf("array index %d out of bounds for length %d", index, len(arr.Elems)),
		})
		return
	}
	arr.Elems[index] = value
}

// DeleteRef implements ports.HostRuntime.
func (r *Runtime) DeleteRef(_ context.Context, h entities.Handle) {
	delete(r.objects, h)
}

// ExceptionCheck implements ports.HostRuntime.
func (r *Runtime) ExceptionCheck(_ context.Context) bool {
	return r.pending != nil
}

// DescribeException implements ports.HostRuntime.
func (r *Runtime) DescribeException(_ context.Context) []entities.ExceptionEntry {
	if r.pending == nil {
		return nil
	}
	out := make([]entities.ExceptionEntry, len(r.pending))
	copy(out, r.pending)
	return out
}

// ExceptionClear implements ports.HostRuntime.
func (r *Runtime) ExceptionClear(_ context.Context) {
	r.pending = nil
}
