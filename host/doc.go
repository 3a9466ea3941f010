// Package host runs a validation engine compiled to WebAssembly and exposes it
// as a ports.HostRuntime.
//
// The guest exports the xsdb_* calling convention (handles, entry point lookup,
// sticky exception state) and imports the xsd_host module for resource reads
// and logging. Payloads cross the boundary as wireformat JSON in guest memory
// addressed by packed pointer/length values.
package host
