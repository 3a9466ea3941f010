// Package wazero provides adapters for registering host functions with the wazero runtime.
//
// It bridges the pure Go handlers of package hostfuncs with the WebAssembly
// guest engine. It handles:
//
//   - Converting between packed i64 pointer+length format and byte slices
//   - Reading request data from guest memory
//   - Allocating and writing response data to guest memory
//   - Registering handlers with the wazero host module builder
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithResourceReader(hostfuncs.NewResourceReader(0, "/srv/schemas")),
//	)
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//	err = wazero.RegisterWithRuntime(ctx, runtime, registry)
//
// # Custom Handlers
//
// For handlers that don't fit the request/response pattern, such as guest
// logging, use WithCustomHandler:
//
//	wazero.RegisterWithRuntime(ctx, runtime, registry,
//	    wazero.WithCustomHandler(wazero.LogHandler("log_message", relay.Handle)),
//	)
package wazero
