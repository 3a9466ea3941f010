// Package wazero registers host function handlers with the wazero runtime so
// that guest validation engines can call back into the host.
package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/xsd-bridge/hostfuncs"
	"github.com/reglet-dev/xsd-bridge/internal/abi"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultModuleName is the host module guests import host functions from.
const DefaultModuleName = "xsd_host"

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// ModuleName is the host module name (default: "xsd_host").
	ModuleName string

	// MaxRequestSize limits the size of incoming requests from guest memory.
	// Default is 1MB.
	MaxRequestSize uint32

	// CustomHandlers allows adding additional wazero-specific handlers that
	// do not follow the packed request/response shape, such as log_message.
	CustomHandlers []CustomHandler
}

// CustomHandler represents a custom wazero handler that doesn't use the standard
// packed i64 request/response pattern.
type CustomHandler struct {
	// Name is the exported function name.
	Name string

	// Handler is the wazero GoModuleFunc implementation.
	Handler api.GoModuleFunc

	// ParamTypes are the WASM parameter types.
	ParamTypes []api.ValueType

	// ResultTypes are the WASM result types.
	ResultTypes []api.ValueType
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name (default: "xsd_host").
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxRequestSize sets the maximum request size from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxRequestSize = size
	}
}

// WithCustomHandler adds a custom wazero handler.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

// defaultAdapterConfig returns the default adapter configuration.
func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:     DefaultModuleName,
		MaxRequestSize: hostfuncs.DefaultMaxRequestSize,
	}
}

// RegisterWithRuntime exports every function of registry to guests of runtime.
// This creates a host module with the configured name (default: "xsd_host") and
// exports all handlers from the registry.
//
// Each handler is wrapped to:
//   - Read request bytes from guest memory using the packed i64 ptr+len format
//   - Invoke the registry function with the request payload
//   - Allocate response memory in the guest using the "allocate" export
//   - Return packed i64 ptr+len of the response
//
// Example:
//
//	registry, _ := hostfuncs.NewRegistry(
//	    hostfuncs.WithResourceReader(hostfuncs.NewResourceReader(0, cwd, resourcesDir)),
//	)
//	err := wazero.RegisterWithRuntime(ctx, runtime, registry,
//	    wazero.WithCustomHandler(wazero.LogHandler(log.LogMessageName, relay.Handle)),
//	)
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.Registry, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	for _, name := range registry.Names() {
		funcName := name
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				invoke := func(ctx context.Context, req []byte) ([]byte, error) {
					return registry.Invoke(ctx, funcName, req)
				}
				stack[0] = serve(ctx, mod.Memory(), mod.ExportedFunction("allocate"), stack[0], invoke, cfg.MaxRequestSize,
					slog.String("function", funcName), slog.String("guest", GuestName(ctx, mod)))
			}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			Export(funcName)
	}

	for _, ch := range cfg.CustomHandlers {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
	}

	_, err := builder.Instantiate(ctx)
	return err
}

// LogHandler exports name as a fire-and-forget function taking one packed
// request. The payload is copied out of guest memory before sink is called.
func LogHandler(name string, sink func(ctx context.Context, payload []byte)) CustomHandler {
	return CustomHandler{
		Name: name,
		Handler: api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			if payload, ok := readRequest(ctx, mod.Memory(), stack[0], hostfuncs.DefaultMaxRequestSize); ok {
				sink(ctx, payload)
			}
		}),
		ParamTypes:  []api.ValueType{api.ValueTypeI64},
		ResultTypes: []api.ValueType{},
	}
}

// serve handles one packed request/response host call against guest memory.
// Failures are reported to the guest as structured error responses.
func serve(ctx context.Context, mem abi.Memory, allocate abi.Function, packed uint64,
	invoke func(context.Context, []byte) ([]byte, error), maxRequestSize uint32, attrs ...slog.Attr,
) uint64 {
	ptr, length, err := abi.UnpackPtrLen(packed)
	if err != nil {
		slog.LogAttrs(ctx, slog.LevelError, "wazero: invalid request pointer", append(attrs, slog.Any("error", err))...)
		return writeResponse(ctx, mem, allocate, hostfuncs.Fail(hostfuncs.ErrBadRequest, "%v", err))
	}

	if length > maxRequestSize {
		errMsg := fmt.Sprintf("request size %d exceeds maximum %d bytes", length, maxRequestSize)
		slog.LogAttrs(ctx, slog.LevelError, "wazero: "+errMsg, attrs...)
		return writeResponse(ctx, mem, allocate, hostfuncs.Fail(hostfuncs.ErrBadRequest, "%s", errMsg))
	}

	var request []byte
	if length > 0 {
		var ok bool
		request, ok = mem.Read(ptr, length)
		if !ok {
			errMsg := "failed to read request from guest memory"
			slog.LogAttrs(ctx, slog.LevelError, "wazero: "+errMsg, attrs...)
			return writeResponse(ctx, mem, allocate, hostfuncs.Fail(hostfuncs.ErrInternal, "%s", errMsg))
		}
	}

	response, err := invoke(ctx, request)
	if err != nil {
		slog.LogAttrs(ctx, slog.LevelError, "wazero: handler invocation failed", append(attrs, slog.Any("error", err))...)
		return writeResponse(ctx, mem, allocate, hostfuncs.Fail(hostfuncs.ErrInternal, "%v", err))
	}

	return writeResponse(ctx, mem, allocate, response)
}

// readRequest copies a bounded request out of guest memory.
func readRequest(ctx context.Context, mem abi.Memory, packed uint64, maxSize uint32) ([]byte, bool) {
	ptr, length, err := abi.UnpackPtrLen(packed)
	if err != nil || length == 0 || length > maxSize {
		slog.WarnContext(ctx, "wazero: dropping request", "length", length, "error", err)
		return nil, false
	}
	data, ok := mem.Read(ptr, length)
	if !ok {
		slog.WarnContext(ctx, "wazero: request out of guest memory", "ptr", ptr, "length", length)
		return nil, false
	}
	out := make([]byte, length)
	copy(out, data)
	return out, true
}

// writeResponse allocates memory in the guest and writes the response bytes.
// Returns packed ptr+len or 0 on failure.
func writeResponse(ctx context.Context, mem abi.Memory, allocate abi.Function, data []byte) uint64 {
	if allocate == nil {
		slog.ErrorContext(ctx, "wazero: guest module missing 'allocate' export")
		return 0
	}
	// Responses are owned by the guest, so deallocation is the guest's business.
	guest, err := abi.NewGuest(mem, allocate, noDeallocate{})
	if err != nil {
		slog.ErrorContext(ctx, "wazero: invalid guest", "error", err)
		return 0
	}
	packed, err := guest.Write(ctx, data)
	if err != nil {
		slog.ErrorContext(ctx, "wazero: failed to write response to guest memory", "error", err)
		return 0
	}
	return packed
}

type noDeallocate struct{}

func (noDeallocate) Call(context.Context, ...uint64) ([]uint64, error) { return nil, nil }
