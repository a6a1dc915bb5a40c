package malloc

import "sync"
import "sync/atomic"
import "unsafe"

import "github.com/rbartlensky/rpools/api"
import s "github.com/bnclabs/gosettings"
import gohumanize "github.com/dustin/go-humanize"

// GlobalPools routes slab sizes between Alignment and Maxslab to one
// LinkedPool per size class. Pools are constructed on first use; once
// installed a pool slot never changes, so lookups need no lock. Sizes
// beyond Maxslab, and alignments beyond Maxalign, are served by the
// system allocator and tagged with mallocmark.
type GlobalPools struct {
	// 64-bit aligned, accessed atomically
	allocated int64 // page bytes currently held from the OS

	capacity int64
	setts    s.Settings

	mu    sync.Mutex
	pools [Nslabs]*LinkedPool
}

// NewGlobalPools create a size-class dispatcher with given settings,
// also refer to Defaultsettings().
func NewGlobalPools(setts s.Settings) *GlobalPools {
	setts = make(s.Settings).Mixin(Defaultsettings(), setts)
	validatesettings(setts)
	g := &GlobalPools{
		capacity: setts.Int64("capacity"),
		setts:    setts,
	}
	infof(
		"malloc.global: %v slab classes, capacity %v",
		Nslabs, gohumanize.Bytes(uint64(g.capacity)),
	)
	return g
}

// Getpool return the pool serving `slab` sized slots, constructing it
// on first use. Slab must be a multiple of Alignment within Maxslab.
func (g *GlobalPools) Getpool(slab int64) *LinkedPool {
	if slab <= 0 || slab > Maxslab || (slab%Alignment) != 0 {
		panicerr("Getpool: %v is not a slab size", slab)
	}
	idx := (slab / Alignment) - 1
	pp := (*unsafe.Pointer)(unsafe.Pointer(&g.pools[idx]))
	if p := atomic.LoadPointer(pp); p != nil {
		return (*LinkedPool)(p)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pools[idx] == nil {
		pool := NewLinkedPool(slab, Alignment, g.setts)
		pool.owner = g
		atomic.StorePointer(pp, unsafe.Pointer(pool))
	}
	return g.pools[idx]
}

// Slabs implement api.Mallocer{} interface.
func (g *GlobalPools) Slabs() []int64 {
	sizes := make([]int64, 0, Nslabs)
	for slab := Alignment; slab <= Maxslab; slab += Alignment {
		sizes = append(sizes, slab)
	}
	return sizes
}

// Alloc implement api.Mallocer{} interface. Panics with
// ErrorOutofmemory when memory cannot be obtained.
func (g *GlobalPools) Alloc(size, align int64) unsafe.Pointer {
	ptr := g.Allocnothrow(size, align)
	if ptr == nil {
		panic(ErrorOutofmemory)
	}
	return ptr
}

// Allocnothrow implement api.Mallocer{} interface. Sizes above Maxslab,
// and alignments above Maxalign, go to the system allocator; pool sizes
// are rounded up to the next slab, bumped one slab further when the
// slab is not a multiple of the requested alignment. Returns nil when
// memory cannot be obtained.
func (g *GlobalPools) Allocnothrow(size, align int64) unsafe.Pointer {
	if align == 0 {
		align = Alignment
	}
	if size > Maxslab || align > Maxalign {
		return mallocblock(size)
	}
	slab := Suitableslab(size)
	if (slab % align) != 0 {
		slab += Alignment
	}
	return g.Getpool(slab).Allocate()
}

// Free implement api.Mallocer{} interface. System allocated blocks are
// recognized by the mallocmark behind the pointer, anything else is
// routed to the pool owning the pointer's page. Free(nil) is a no-op.
func (g *GlobalPools) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	if ismallocked(ptr) {
		freeblock(ptr)
		return
	}
	header := headerat(pagebase(ptr))
	g.Getpool(int64(header.slabsize)).Free(ptr)
}

// Slabsize implement api.Mallocer{} interface. Returns the slab size of
// the pool that served ptr, 0 for system allocated blocks.
func (g *GlobalPools) Slabsize(ptr unsafe.Pointer) int64 {
	if ismallocked(ptr) {
		return 0
	}
	return int64(headerat(pagebase(ptr)).slabsize)
}

// Info implement api.Mallocer{} interface.
func (g *GlobalPools) Info() (capacity, heap, alloc, overhead int64) {
	capacity = g.capacity
	for _, pool := range g.livepools() {
		_, h, a, o := pool.Info()
		heap, alloc, overhead = heap+h, alloc+a, overhead+o
	}
	return capacity, heap, alloc, overhead
}

// Utilization implement api.Mallocer{} interface, slab sizes with at
// least one page and the percentage of their slab bytes handed out.
func (g *GlobalPools) Utilization() ([]int, []float64) {
	ss, zs := make([]int, 0), make([]float64, 0)
	for _, pool := range g.livepools() {
		capacity, _, alloc, _ := pool.Info()
		if capacity > 0 {
			ss = append(ss, int(pool.slabsize))
			zs = append(zs, (float64(alloc)/float64(capacity))*100)
		}
	}
	return ss, zs
}

// Release implement api.Mallocer{} interface, release every pool.
func (g *GlobalPools) Release() {
	for _, pool := range g.livepools() {
		pool.Release()
	}
}

// Log pool accounting via the package logger, with human readable
// values if humanize is true.
func (g *GlobalPools) Log(humanize bool) {
	_, heap, alloc, overhead := g.Info()
	if humanize {
		infof(
			"malloc.global: heap:%v alloc:%v overhead:%v",
			gohumanize.Bytes(uint64(heap)), gohumanize.Bytes(uint64(alloc)),
			gohumanize.Bytes(uint64(overhead)),
		)
	} else {
		infof(
			"malloc.global: heap:%v alloc:%v overhead:%v",
			heap, alloc, overhead,
		)
	}
	ss, zs := g.Utilization()
	for i, slab := range ss {
		infof("malloc.global: slab %v utilization %.2f%%", slab, zs[i])
	}
}

func (g *GlobalPools) livepools() []*LinkedPool {
	pools := make([]*LinkedPool, 0, Nslabs)
	for i := range g.pools {
		pp := (*unsafe.Pointer)(unsafe.Pointer(&g.pools[i]))
		if p := atomic.LoadPointer(pp); p != nil {
			pools = append(pools, (*LinkedPool)(p))
		}
	}
	return pools
}

// reserve account n upcoming page bytes against capacity.
func (g *GlobalPools) reserve(n int64) bool {
	for {
		allocated := atomic.LoadInt64(&g.allocated)
		if allocated+n > g.capacity {
			return false
		}
		if atomic.CompareAndSwapInt64(&g.allocated, allocated, allocated+n) {
			return true
		}
	}
}

func (g *GlobalPools) unreserve(n int64) {
	atomic.AddInt64(&g.allocated, -n)
}

var _ api.Mallocer = (*GlobalPools)(nil)
