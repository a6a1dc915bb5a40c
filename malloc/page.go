package malloc

import "unsafe"

// poolHeader sits at offset zero of every pool page. The page's base
// address is always a multiple of the page size, so the header of the
// page owning any slot pointer is reachable by masking the pointer with
// pagemask. The magic bytes identify the page as pool memory and must
// stay byte-wise distinct from mallocmark.
type poolHeader struct {
	magic    [8]byte
	slabsize uint32
	occupied uint32
	freelist uintptr // address of first free slot, 0 when none
	_        uint64  // keep slot 0 on a 16-byte boundary
}

var poolmagic = [8]byte{'_', '_', 'p', 'o', 'o', 'l', '_', 0}

// marksize number of bytes prefixing every system allocated block.
const marksize = 16

// mallocmark 15-byte sentinel written at the head of system allocated
// blocks, Free recognizes such blocks by comparing the 15 bytes behind
// the pointer. Pool pages never present this pattern at any reachable
// p-16 window of a freshly returned pointer: slot 0 starts past the
// header, whose first bytes are poolmagic.
var mallocmark = [marksize]byte{
	'I', 's', 'T', 'h', 'I', 's', 'M', 'a', 'L', 'l', 'O', 'c', 'D', '!', 0, 0,
}

var headersize = int64(unsafe.Sizeof(poolHeader{}))

func headerat(page uintptr) *poolHeader {
	return (*poolHeader)(unsafe.Pointer(page))
}

// pagebase base address of the page owning ptr.
func pagebase(ptr unsafe.Pointer) uintptr {
	return uintptr(ptr) &^ pagemask
}

// initpage construct a poolHeader at page and thread every slot into the
// header's free list, each link pointing to the subsequent slot.
func initpage(page uintptr, slabsize uint32, headerpad, capacity int64) {
	header := headerat(page)
	header.magic = poolmagic
	header.slabsize = slabsize
	header.occupied = 0
	slot := page + uintptr(headerpad)
	header.freelist = slot
	for i := int64(1); i < capacity; i++ {
		next := slot + uintptr(slabsize)
		*(*uintptr)(unsafe.Pointer(slot)) = next
		slot = next
	}
	*(*uintptr)(unsafe.Pointer(slot)) = 0
}

func ismallocked(ptr unsafe.Pointer) bool {
	mark := (*[marksize]byte)(unsafe.Pointer(uintptr(ptr) - marksize))
	for i := 0; i < 15; i++ {
		if mark[i] != mallocmark[i] {
			return false
		}
	}
	return true
}
