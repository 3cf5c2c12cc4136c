// Package host provides the dependency loader engines use to acquire optional
// runtime modules, and a WASM runtime for modules shipped as .wasm files.
//
// It abstracts the underlying WASM engine (wazero), manages module lifecycle,
// and handles the low-level ABI interactions (memory allocation, data packing/unpacking).
// Modules are resolved by name through an ordered list of resolvers and cached
// by the Loader, so an engine asking for the same dependency twice gets the same
// reference back.
package host
