package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
	xwazero "github.com/reglet-dev/xsd-bridge/infrastructure/wazero"
	"github.com/reglet-dev/xsd-bridge/internal/abi"
	xcontext "github.com/reglet-dev/xsd-bridge/internal/context"
	"github.com/reglet-dev/xsd-bridge/wireformat"
	"github.com/tetratelabs/wazero/api"
)

// Guest exports of the xsdb calling convention.
const (
	exportFindClass    = "xsdb_find_class"
	exportLookupMethod = "xsdb_lookup_method"
	exportNewObject    = "xsdb_new_object"
	exportNewString    = "xsdb_new_string"
	exportGetString    = "xsdb_get_string"
	exportNewAtomic    = "xsdb_new_atomic"
	exportNewArray     = "xsdb_new_array"
	exportArraySet     = "xsdb_array_set"
	exportCall         = "xsdb_call"
	exportRelease      = "xsdb_release"
	exportExcCheck     = "xsdb_exception_check"
	exportExcDescribe  = "xsdb_exception_describe"
	exportExcClear     = "xsdb_exception_clear"
)

var _ ports.HostRuntime = (*Runtime)(nil)

// Runtime is a ports.HostRuntime backed by a WebAssembly guest engine.
// It is not safe for concurrent use.
type Runtime struct {
	logger *slog.Logger
	guest  *abi.Guest
	fns    map[string]abi.Function
	close  func(context.Context) error
	name   string
	// fault holds exceptions raised by the runtime itself (traps, malformed
	// responses). They are reported ahead of the guest's own pending exception.
	fault []entities.ExceptionEntry
}

func newRuntime(logger *slog.Logger, name string, guest *abi.Guest, fns map[string]abi.Function) *Runtime {
	return &Runtime{logger: logger, name: name, guest: guest, fns: fns}
}

// Name returns the guest name used in diagnostics.
func (r *Runtime) Name() string {
	return r.name
}

// Close releases the guest instance and the wazero runtime behind it.
func (r *Runtime) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	err := r.close(ctx)
	r.close = nil
	return err
}

func (r *Runtime) raise(code, message string) {
	r.fault = append(r.fault, entities.ExceptionEntry{Code: code, Message: message})
}

// popFault returns and clears the runtime's own fault as an error.
func (r *Runtime) popFault() error {
	if len(r.fault) == 0 {
		return nil
	}
	err := fmt.Errorf("%s", entities.NewExceptionSnapshot(r.fault).String())
	r.fault = nil
	return err
}

// invoke calls a guest export without recording anything. The returned entry
// describes the failure when ok is false.
func (r *Runtime) invoke(ctx context.Context, name string, params ...uint64) (uint64, entities.ExceptionEntry, bool) {
	fn, ok := r.fns[name]
	if !ok {
		return 0, entities.ExceptionEntry{Code: entities.CodeABI, Message: "guest does not export " + name}, false
	}
	res, err := fn.Call(xwazero.WithGuestName(ctx, r.name), params...)
	if err != nil {
		return 0, entities.ExceptionEntry{Code: entities.CodeTrap, Message: fmt.Sprintf("%s: %v", name, err)}, false
	}
	if len(res) == 0 {
		return 0, entities.ExceptionEntry{}, true
	}
	return res[0], entities.ExceptionEntry{}, true
}

// call invokes a guest export. A trap becomes a pending CodeTrap exception.
func (r *Runtime) call(ctx context.Context, name string, params ...uint64) (uint64, bool) {
	out, fault, ok := r.invoke(ctx, name, params...)
	if !ok {
		if fault.Code == entities.CodeTrap {
			r.logger.ErrorContext(ctx, "host: guest call trapped", "guest", r.name, "export", name, "error", fault.Message)
		}
		r.raise(fault.Code, fault.Message)
	}
	return out, ok
}

// send writes payload into guest memory, calls name with it and frees it.
func (r *Runtime) send(ctx context.Context, name string, payload []byte) (uint64, bool) {
	req, err := r.guest.Write(ctx, payload)
	if err != nil {
		r.raise(entities.CodeABI, fmt.Sprintf("%s: %v", name, err))
		return 0, false
	}
	out, ok := r.call(ctx, name, req)
	if err := r.guest.Free(ctx, req); err != nil {
		r.logger.WarnContext(ctx, "host: failed to free request", "export", name, "error", err)
	}
	return out, ok
}

// sendJSON marshals v and sends it.
func (r *Runtime) sendJSON(ctx context.Context, name string, v any) (uint64, bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		r.raise(entities.CodeABI, fmt.Sprintf("%s: failed to marshal request: %v", name, err))
		return 0, false
	}
	r.logger.DebugContext(ctx, "host: marshalled request", "export", name, "bytes", len(payload))
	return r.send(ctx, name, payload)
}

// decode takes the guest response named by packed and decodes it into out
// without recording anything.
func (r *Runtime) decode(ctx context.Context, name string, packed uint64, out any) error {
	data, err := r.guest.Take(ctx, packed)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%s: empty response", name)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: malformed response: %w", name, err)
	}
	return nil
}

// receive takes the guest response named by packed and decodes it into out.
// It reports false, with a pending CodeABI exception, when there is no
// well-formed response.
func (r *Runtime) receive(ctx context.Context, name string, packed uint64, out any) bool {
	if err := r.decode(ctx, name, packed, out); err != nil {
		r.raise(entities.CodeABI, err.Error())
		return false
	}
	return true
}

// FindClass implements ports.HostRuntime.
func (r *Runtime) FindClass(ctx context.Context, name string) (entities.ClassRef, error) {
	var resp wireformat.ClassWire
	packed, ok := r.sendJSON(ctx, exportFindClass, wireformat.FindClassWire{Name: name})
	if ok {
		ok = r.receive(ctx, exportFindClass, packed, &resp)
	}
	if !ok {
		return entities.ClassRef{}, fmt.Errorf("failed to find class %q: %w", name, r.popFault())
	}
	if resp.Error != nil {
		return entities.ClassRef{}, fmt.Errorf("failed to find class %q: %w", name, resp.Error)
	}
	if resp.ID == 0 {
		return entities.ClassRef{}, fmt.Errorf("class %q not found", name)
	}
	return entities.ClassRef{Name: name, ID: resp.ID}, nil
}

// LookupMethod implements ports.HostRuntime.
func (r *Runtime) LookupMethod(ctx context.Context, class entities.ClassRef, name string, sig entities.Signature) (entities.MethodRef, bool) {
	var resp wireformat.MethodWire
	packed, ok := r.sendJSON(ctx, exportLookupMethod, wireformat.MethodLookupWire{
		Class: class.Name, ClassID: class.ID, Name: name, Signature: sig.String(),
	})
	if ok {
		ok = r.receive(ctx, exportLookupMethod, packed, &resp)
	}
	if !ok {
		r.logger.WarnContext(ctx, "host: method lookup failed", "class", class.Name, "method", name, "error", r.popFault())
		return entities.MethodRef{}, false
	}
	if resp.ID == 0 {
		return entities.MethodRef{}, false
	}
	return entities.MethodRef{Class: class, Name: name, Signature: sig, ID: resp.ID}, true
}

// NewObject implements ports.HostRuntime.
func (r *Runtime) NewObject(ctx context.Context, class entities.ClassRef, ctor entities.Signature, args ...entities.Handle) entities.Handle {
	h, _ := r.sendJSON(ctx, exportNewObject, wireformat.NewObjectWire{
		ClassID:   class.ID,
		Signature: ctor.String(),
		Args:      wireformat.Handles(args),
		Context:   xcontext.ContextToWire(ctx),
	})
	return entities.Handle(h)
}

// NewString implements ports.HostRuntime. The empty string is sent as a
// zero-length region.
func (r *Runtime) NewString(ctx context.Context, s string) entities.Handle {
	h, _ := r.send(ctx, exportNewString, []byte(s))
	return entities.Handle(h)
}

// GetString implements ports.HostRuntime.
func (r *Runtime) GetString(ctx context.Context, h entities.Handle) (string, bool) {
	if h.IsNull() {
		return "", false
	}
	packed, ok := r.call(ctx, exportGetString, uint64(h))
	if !ok {
		return "", false
	}
	var resp wireformat.StringWire
	if !r.receive(ctx, exportGetString, packed, &resp) {
		return "", false
	}
	return resp.Value, resp.OK
}

// NewAtomic implements ports.HostRuntime.
func (r *Runtime) NewAtomic(ctx context.Context, typeName, lexical string) entities.Handle {
	h, _ := r.sendJSON(ctx, exportNewAtomic, wireformat.AtomicWire{Type: typeName, Lexical: lexical})
	return entities.Handle(h)
}

// NewArray implements ports.HostRuntime.
func (r *Runtime) NewArray(ctx context.Context, kind entities.Kind, length int) entities.Handle {
	code, ok := wireformat.ArrayKindCode(kind)
	if !ok || length < 0 {
		r.raise(entities.CodeInvalidCall, fmt.Sprintf("invalid array %s of length %d", kind, length))
		return entities.NullHandle
	}
	h, _ := r.call(ctx, exportNewArray, api.EncodeI32(code), api.EncodeI32(int32(length))) //nolint:gosec // G115: array lengths are bounded by the parameter store
	return entities.Handle(h)
}

// SetArrayElement implements ports.HostRuntime.
func (r *Runtime) SetArrayElement(ctx context.Context, array entities.Handle, index int, value entities.Handle) {
	r.call(ctx, exportArraySet, uint64(array), api.EncodeI32(int32(index)), uint64(value)) //nolint:gosec // G115: see NewArray
}

// Call implements ports.HostRuntime.
func (r *Runtime) Call(ctx context.Context, receiver entities.Handle, method entities.MethodRef, args ...entities.Handle) entities.Handle {
	h, _ := r.sendJSON(ctx, exportCall, wireformat.CallWire{
		Receiver: uint64(receiver),
		MethodID: method.ID,
		Args:     wireformat.Handles(args),
		Context:  xcontext.ContextToWire(ctx),
	})
	return entities.Handle(h)
}

// DeleteRef implements ports.HostRuntime.
func (r *Runtime) DeleteRef(ctx context.Context, h entities.Handle) {
	if h.IsNull() {
		return
	}
	r.call(ctx, exportRelease, uint64(h))
}

// ExceptionCheck implements ports.HostRuntime. It never records a fault of
// its own: a guest that cannot answer is reported as pending.
func (r *Runtime) ExceptionCheck(ctx context.Context) bool {
	if len(r.fault) > 0 {
		return true
	}
	pending, fault, ok := r.invoke(ctx, exportExcCheck)
	if !ok {
		r.logger.WarnContext(ctx, "host: exception check failed", "guest", r.name, "error", fault.Message)
		return true
	}
	return api.DecodeI32(pending) != 0
}

// DescribeException implements ports.HostRuntime. Runtime faults come first.
// A failure to describe is returned as an entry but not recorded.
func (r *Runtime) DescribeException(ctx context.Context) []entities.ExceptionEntry {
	out := append([]entities.ExceptionEntry(nil), r.fault...)
	packed, fault, ok := r.invoke(ctx, exportExcDescribe)
	if !ok {
		r.logger.WarnContext(ctx, "host: exception describe failed", "guest", r.name, "error", fault.Message)
		return append(out, fault)
	}
	if packed == 0 {
		return out
	}
	var resp wireformat.ExceptionWire
	if err := r.decode(ctx, exportExcDescribe, packed, &resp); err != nil {
		return append(out, entities.ExceptionEntry{Code: entities.CodeABI, Message: err.Error()})
	}
	return append(out, resp.Entries...)
}

// ExceptionClear implements ports.HostRuntime.
func (r *Runtime) ExceptionClear(ctx context.Context) {
	r.call(ctx, exportExcClear)
	// A trap while clearing is not an exception the caller can act on.
	r.fault = nil
}
