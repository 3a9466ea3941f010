// Package hostfuncs provides the pure Go implementations of the functions a
// guest validation engine may call on its host. These implementations have NO
// WASM runtime dependencies; infrastructure/wazero exports them to the guest.
package hostfuncs
