// Package abi holds the pointer/length packing shared by the host and guest
// sides of the WASM calling convention.
package abi

// PtrHighBits is the shift placing the pointer in the high half of a packed value.
const PtrHighBits = 32

// PackPtrLen packs a pointer and length into a single uint64, pointer in the
// high 32 bits and length in the low 32 bits.
func PackPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen splits a packed value. ok is false whenever the pointer or the
// length is zero, which covers the null value.
func UnpackPtrLen(packed uint64) (ptr, length uint32, ok bool) {
	ptr = uint32(packed >> PtrHighBits)
	length = uint32(packed)
	return ptr, length, ptr != 0 && length != 0
}
