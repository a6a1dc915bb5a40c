package malloc

//#include <stdlib.h>
import "C"

import "unsafe"

// mallocblock obtain size usable bytes from the system allocator. The
// block is prefixed with marksize bytes holding mallocmark, so that
// Free can tell system blocks from pool slots, and the pointer past
// the mark is returned.
func mallocblock(size int64) unsafe.Pointer {
	base := C.malloc(C.size_t(size + marksize))
	if base == nil {
		return nil
	}
	mark := (*[marksize]byte)(base)
	copy(mark[:], mallocmark[:])
	return unsafe.Pointer(uintptr(base) + marksize)
}

// freeblock release a block returned by mallocblock.
func freeblock(ptr unsafe.Pointer) {
	C.free(unsafe.Pointer(uintptr(ptr) - marksize))
}
