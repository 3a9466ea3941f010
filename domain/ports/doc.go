// Package ports defines interfaces for infrastructure operations.
// These ports enable dependency inversion - the bridge depends on abstractions,
// and runtime adapters (in-process, WASM) implement these interfaces.
package ports
