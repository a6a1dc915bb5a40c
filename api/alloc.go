// Package api holds interfaces shared between pool implementations and
// their embedders.
package api

import "unsafe"

// Mallocer interface for custom memory management.
type Mallocer interface {
	// Slabs allocatable slab sizes.
	Slabs() (sizes []int64)

	// Alloc allocate `n` bytes with given alignment. Allocated
	// memory is always 64-bit aligned; alignment must be a power
	// of two.
	Alloc(n, align int64) unsafe.Pointer

	// Allocnothrow same as Alloc, returning nil when memory cannot
	// be obtained.
	Allocnothrow(n, align int64) unsafe.Pointer

	// Slabsize return the slab size that served ptr, 0 when ptr was
	// served by the system allocator.
	Slabsize(ptr unsafe.Pointer) int64

	// Free chunk back to its pool, or to the system allocator.
	Free(ptr unsafe.Pointer)

	// Release all pools and their resources.
	Release()

	// Info of memory accounting for this allocator.
	Info() (capacity, heap, alloc, overhead int64)

	// Utilization map of slab-size and its utilization.
	Utilization() ([]int, []float64)
}
