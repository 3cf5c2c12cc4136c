//go:build wasip1

package guest

import (
	"context"
	"sync"
	"unsafe"

	"github.com/reglet-dev/tmplkit/internal/abi"
)

// MaxTotalAllocations bounds the memory the host may ask the module to reserve.
const MaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// memoryManager pins allocated slices so the GC leaves them alone until they
// are freed.
var memoryManager = struct {
	sync.Mutex
	ptrs           map[uint32][]byte
	totalAllocated int
}{
	ptrs: make(map[uint32][]byte),
}

// allocate reserves size bytes for the host to write into. It returns 0 when
// size is zero or the limit would be exceeded.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	if memoryManager.totalAllocated+int(size) > MaxTotalAllocations {
		return 0
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))
	memoryManager.ptrs[ptr] = buf
	memoryManager.totalAllocated += int(size)
	return ptr
}

// deallocate releases memory returned by allocate. Unknown pointers are ignored.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	buf, ok := memoryManager.ptrs[ptr]
	if !ok {
		return
	}
	delete(memoryManager.ptrs, ptr)
	memoryManager.totalAllocated -= len(buf)
	if memoryManager.totalAllocated < 0 {
		memoryManager.totalAllocated = 0
	}
}

// evaluate is called by the host with a JSON Request and returns a packed
// pointer to a JSON Response. The request buffer is freed before returning;
// the response stays pinned until the next call.
//
//go:wasmexport evaluate
func evaluate(ptr, length uint32) uint64 {
	input := readFromMemory(ptr, length)
	deallocate(ptr, length)

	releaseLast()
	out := dispatch(context.Background(), input)
	return pinResponse(out)
}

var lastResponse uint32

func releaseLast() {
	if lastResponse != 0 {
		deallocate(lastResponse, 0)
		lastResponse = 0
	}
}

func pinResponse(data []byte) uint64 {
	size := uint32(len(data))
	ptr := allocate(size)
	if ptr == 0 {
		return 0
	}
	copyToMemory(ptr, data)
	lastResponse = ptr
	return abi.PackPtrLen(ptr, size)
}

func copyToMemory(ptr uint32, data []byte) {
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	dest := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), len(data))
	copy(dest, data)
}

func readFromMemory(ptr, length uint32) []byte {
	if ptr == 0 || length == 0 {
		return nil
	}
	//nolint:gosec // G103: Valid unsafe.Pointer use for WASM linear memory access
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
	data := make([]byte, length)
	copy(data, src)
	return data
}
