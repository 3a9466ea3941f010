package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	bridgeerrors "github.com/reglet-dev/xsd-bridge/domain/errors"
	"github.com/reglet-dev/xsd-bridge/hostfuncs"
	xwazero "github.com/reglet-dev/xsd-bridge/infrastructure/wazero"
	"github.com/reglet-dev/xsd-bridge/internal/abi"
	"github.com/reglet-dev/xsd-bridge/log"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// export describes one function the guest must provide.
type export struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// requiredExports is the xsdb calling convention plus the guest allocator.
var requiredExports = []export{
	{"allocate", []api.ValueType{i32}, []api.ValueType{i32}},
	{"deallocate", []api.ValueType{i32, i32}, nil},
	{exportFindClass, []api.ValueType{i64}, []api.ValueType{i64}},
	{exportLookupMethod, []api.ValueType{i64}, []api.ValueType{i64}},
	{exportNewObject, []api.ValueType{i64}, []api.ValueType{i64}},
	{exportNewString, []api.ValueType{i64}, []api.ValueType{i64}},
	{exportGetString, []api.ValueType{i64}, []api.ValueType{i64}},
	{exportNewAtomic, []api.ValueType{i64}, []api.ValueType{i64}},
	{exportNewArray, []api.ValueType{i32, i32}, []api.ValueType{i64}},
	{exportArraySet, []api.ValueType{i64, i32, i64}, nil},
	{exportCall, []api.ValueType{i64}, []api.ValueType{i64}},
	{exportRelease, []api.ValueType{i64}, nil},
	{exportExcCheck, nil, []api.ValueType{i32}},
	{exportExcDescribe, nil, []api.ValueType{i64}},
	{exportExcClear, nil, nil},
}

// checkExports verifies that defs provide every required export with the
// expected signature.
func checkExports(defs map[string]api.FunctionDefinition) error {
	for _, want := range requiredExports {
		def, ok := defs[want.name]
		if !ok {
			return &bridgeerrors.ABIError{Export: want.name, Err: errors.New("not exported")}
		}
		if !sameTypes(def.ParamTypes(), want.params) || !sameTypes(def.ResultTypes(), want.results) {
			return &bridgeerrors.ABIError{Export: want.name, Err: fmt.Errorf("signature %v -> %v, want %v -> %v",
				typeNames(def.ParamTypes()), typeNames(def.ResultTypes()),
				typeNames(want.params), typeNames(want.results))}
		}
	}
	return nil
}

func sameTypes(got, want []api.ValueType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func typeNames(ts []api.ValueType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = api.ValueTypeName(t)
	}
	return out
}

// NewRuntime compiles and instantiates the guest engine in wasm and returns a
// Runtime speaking to it. The guest may read resources below the configured
// working and resources directories, and its log records are relayed to the
// configured logger.
func NewRuntime(ctx context.Context, wasm []byte, opts ...Option) (*Runtime, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := wazero.NewRuntime(ctx)
	ok := false
	defer func() {
		if !ok {
			_ = rt.Close(ctx)
		}
	}()

	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	registry, err := hostfuncs.NewRegistry(append([]hostfuncs.RegistryOption{
		hostfuncs.WithMiddleware(hostfuncs.RecoverPanics(), hostfuncs.LogCalls(cfg.logger)),
		hostfuncs.WithResourceReader(hostfuncs.NewResourceReader(cfg.maxResource, cfg.cwd, cfg.resourcesDir)),
	}, cfg.hostFuncs...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create host function registry: %w", err)
	}

	relay := log.NewRelay(cfg.logger, cfg.name)
	if err := xwazero.RegisterWithRuntime(ctx, rt, registry,
		xwazero.WithMaxRequestSize(cfg.maxRequestSize),
		xwazero.WithCustomHandler(xwazero.LogHandler(log.LogMessageName, relay.Handle)),
	); err != nil {
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile guest: %w", err)
	}
	if err := checkExports(compiled.ExportedFunctions()); err != nil {
		return nil, err
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(cfg.name))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate guest: %w", err)
	}
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	guest, err := abi.NewGuest(mod.Memory(), mod.ExportedFunction("allocate"), mod.ExportedFunction("deallocate"))
	if err != nil {
		return nil, err
	}
	fns := make(map[string]abi.Function, len(requiredExports))
	for _, e := range requiredExports {
		fns[e.name] = mod.ExportedFunction(e.name)
	}

	r := newRuntime(cfg.logger, cfg.name, guest, fns)
	r.close = rt.Close
	ok = true
	cfg.logger.DebugContext(ctx, "host: guest engine loaded", "guest", cfg.name, "resource_roots", []string{cfg.cwd, cfg.resourcesDir})
	return r, nil
}

// LoadFile reads a guest engine from path and calls NewRuntime. The guest is
// named after the file unless WithName is given.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Runtime, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read guest module: %w", err)
	}
	return NewRuntime(ctx, wasm, append([]Option{WithName(filepath.Base(path))}, opts...)...)
}
