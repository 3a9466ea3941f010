// Package entities provides the core domain types shared by every layer of the bridge:
// host handles and references, call signatures, exception snapshots and configuration.
// These types carry no behaviour that reaches into a host runtime.
package entities
