//go:build windows
// +build windows

package malloc

import "golang.org/x/sys/windows"

// ospage obtain one zeroed page from the OS. VirtualAlloc regions
// start on an allocation-granularity boundary, a multiple of the page
// size, which pagebase() relies upon.
func ospage() (uintptr, error) {
	flags := uint32(windows.MEM_COMMIT | windows.MEM_RESERVE)
	page, err := windows.VirtualAlloc(0, uintptr(pagesize), flags, windows.PAGE_READWRITE)
	if err != nil {
		return 0, err
	}
	return page, nil
}

// releasepage return a page obtained with ospage to the OS.
func releasepage(page uintptr) {
	if err := windows.VirtualFree(page, 0, windows.MEM_RELEASE); err != nil {
		errorf("malloc.page: virtualfree %x: %v", page, err)
	}
}
