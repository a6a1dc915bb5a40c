//go:build !windows
// +build !windows

package malloc

import "unsafe"

import "golang.org/x/sys/unix"

// ospage obtain one zeroed page from the OS. Mappings are page
// aligned, which pagebase() relies upon.
func ospage() (uintptr, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_PRIVATE | unix.MAP_ANON
	block, err := unix.Mmap(-1, 0, int(pagesize), prot, flags)
	if err != nil {
		return 0, err
	}
	return uintptr(unsafe.Pointer(&block[0])), nil
}

// releasepage return a page obtained with ospage to the OS.
func releasepage(page uintptr) {
	block := unsafe.Slice((*byte)(unsafe.Pointer(page)), int(pagesize))
	if err := unix.Munmap(block); err != nil {
		errorf("malloc.page: munmap %x: %v", page, err)
	}
}
