package malloc

import "sync"
import "unsafe"

import s "github.com/bnclabs/gosettings"

// The process-wide GlobalPools singleton behind Alloc/Free. It is
// created on first use and never torn down: allocations may outlive
// any deterministic shutdown order, leaking the pools at exit is the
// safe policy.
var globalpools *GlobalPools
var initonce sync.Once

// Init configure the process-wide pools, also refer Defaultsettings().
// Calling Init is optional, the first allocation initializes the pools
// with default settings; only the first call, explicit or implicit,
// takes effect.
func Init(setts s.Settings) *GlobalPools {
	initonce.Do(func() {
		globalpools = NewGlobalPools(setts)
	})
	return globalpools
}

// Alloc allocate `size` bytes with given alignment, panics with
// ErrorOutofmemory when memory cannot be obtained. Alignment must be a
// power of two, passing 0 defaults it to Alignment; alignments above
// Maxalign are served by the system allocator.
func Alloc(size, align int64) unsafe.Pointer {
	return Init(nil).Alloc(size, align)
}

// Allocnothrow same as Alloc, returning nil instead of panicking.
func Allocnothrow(size, align int64) unsafe.Pointer {
	return Init(nil).Allocnothrow(size, align)
}

// Allocarray array form of Alloc, they share the implementation.
func Allocarray(size, align int64) unsafe.Pointer {
	return Alloc(size, align)
}

// Free release ptr, which must have been returned by Alloc,
// Allocnothrow or Allocarray. Free(nil) is a no-op.
func Free(ptr unsafe.Pointer) {
	Init(nil).Free(ptr)
}

// Freearray array form of Free, they share the implementation.
func Freearray(ptr unsafe.Pointer) {
	Free(ptr)
}

// Slabsize slab size of the pool that served ptr, 0 for pointers
// served by the system allocator.
func Slabsize(ptr unsafe.Pointer) int64 {
	return Init(nil).Slabsize(ptr)
}
