package malloc

import "sync"
import "unsafe"

import s "github.com/bnclabs/gosettings"

// LinkedPool manages pool pages of a single slab size. Free slots are
// threaded through an intrusive free list headed in each page's header,
// pages with at least one free slot are indexed by freepages, and
// freepage caches the page touched last so the common path skips the
// index. All methods are safe for concurrent use.
type LinkedPool struct {
	// 64-bit aligned stats
	mallocated int64

	slabsize  int64
	align     int64
	capacity  int64 // number of slots per page
	headerpad int64 // offset of slot 0 within a page

	mu        sync.Mutex
	freepages pageindex
	freepage  uintptr // cached page with a free slot, 0 when unknown
	npages    int64   // number of live pages
	cpages    int64   // number of pages created, including released ones
	owner     *GlobalPools
}

// NewLinkedPool create a pool that serves slabs of `size` bytes aligned
// to `align`. Size is rounded up so that a slab can hold a free-list
// link and satisfies the alignment; align must be a power of two not
// greater than Maxalign, passing 0 defaults it to Alignment.
func NewLinkedPool(size, align int64, setts s.Settings) *LinkedPool {
	if align == 0 {
		align = Alignment
	}
	if !ispowerof2(align) || align > Maxalign {
		panicerr("pool alignment %v invalid", align)
	}
	slabsize := size
	if slabsize < Alignment {
		slabsize = Alignment
	}
	if mod := slabsize % align; mod != 0 {
		slabsize += align - mod
	}
	headerpad := headersize
	if mod := headerpad % align; mod != 0 {
		headerpad += align - mod
	}
	capacity := (pagesize - headerpad) / slabsize
	if capacity < 1 {
		panicerr("slab %v does not fit a %v byte page", slabsize, pagesize)
	}
	setts = make(s.Settings).Mixin(Defaultsettings(), setts)
	pool := &LinkedPool{
		slabsize:  slabsize,
		align:     align,
		capacity:  capacity,
		headerpad: headerpad,
		freepages: newpageindex(setts.String("index")),
	}
	return pool
}

// Slabsize size of the slots served by this pool.
func (pool *LinkedPool) Slabsize() int64 {
	return pool.slabsize
}

// Capacity number of slots a single page holds.
func (pool *LinkedPool) Capacity() int64 {
	return pool.capacity
}

// Pages number of pages currently held from the OS.
func (pool *LinkedPool) Pages() int64 {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	return pool.npages
}

// Allocate one slot. Returns nil when a fresh page cannot be obtained
// from the OS or would exceed the configured capacity.
func (pool *LinkedPool) Allocate() unsafe.Pointer {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.freepage != 0 {
		return pool.takeslot(pool.freepage)
	}
	if page := pool.freepages.first(); page != 0 {
		pool.freepage = page
		return pool.takeslot(page)
	}
	page := pool.newpage()
	if page == 0 {
		return nil
	}
	pool.freepages.insert(page)
	pool.freepage = page
	return pool.takeslot(page)
}

// Free release the slot back to its page. The last outstanding slot of
// a page releases the page to the OS. Passing a pointer this pool did
// not allocate, or freeing twice, is undefined.
func (pool *LinkedPool) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		panicerr("pool.Free(): nil pointer")
	}
	page := pagebase(ptr)

	pool.mu.Lock()
	defer pool.mu.Unlock()

	header := headerat(page)
	if header.occupied == 1 {
		pool.freepages.remove(page)
		releasepage(page)
		pool.npages--
		pool.mallocated -= pool.slabsize
		if pool.owner != nil {
			pool.owner.unreserve(pagesize)
		}
		pool.freepage = pool.freepages.first()
		debugf("malloc.pool: released page %x slab %v", page, pool.slabsize)
		return
	}
	*(*uintptr)(ptr) = header.freelist
	header.freelist = uintptr(ptr)
	wasfull := int64(header.occupied) == pool.capacity
	header.occupied--
	pool.mallocated -= pool.slabsize
	if wasfull {
		pool.freepages.insert(page)
	}
	pool.freepage = page
}

// Info memory accounting for this pool. Heap is the number of bytes
// held from the OS, capacity the slab bytes those pages can serve,
// alloc the slab bytes handed out and overhead the book-keeping bytes.
func (pool *LinkedPool) Info() (capacity, heap, alloc, overhead int64) {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	self := int64(unsafe.Sizeof(*pool))
	heap = pool.npages * pagesize
	capacity = pool.npages * pool.capacity * pool.slabsize
	overhead = self + (heap - capacity)
	return capacity, heap, pool.mallocated, overhead
}

// Release return every page tracked by the free-pages index to the OS.
// Callers must have freed all outstanding slots: pages still fully
// occupied are not indexed and leak, with a warning.
func (pool *LinkedPool) Release() {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	for page := pool.freepages.first(); page != 0; page = pool.freepages.first() {
		pool.freepages.remove(page)
		releasepage(page)
		pool.npages--
		if pool.owner != nil {
			pool.owner.unreserve(pagesize)
		}
	}
	pool.freepage = 0
	if pool.npages > 0 {
		warnf("malloc.pool: %v occupied pages leaked at release", pool.npages)
	}
}

// takeslot hand out the head of page's free list. Precondition: page
// has a free slot. Newly full pages leave the index and the cache is
// refreshed from the index.
func (pool *LinkedPool) takeslot(page uintptr) unsafe.Pointer {
	header := headerat(page)
	slot := header.freelist
	header.freelist = *(*uintptr)(unsafe.Pointer(slot))
	header.occupied++
	if int64(header.occupied) == pool.capacity {
		pool.freepages.remove(page)
		if pool.freepage == page {
			pool.freepage = pool.freepages.first()
		}
	}
	if slot&uintptr(pool.align-1) != 0 {
		panicerr("allocated pointer is not %v byte aligned", pool.align)
	}
	pool.mallocated += pool.slabsize
	initblock(slot, pool.slabsize)
	return unsafe.Pointer(slot)
}

// newpage obtain and initialize a fresh page, 0 on failure.
func (pool *LinkedPool) newpage() uintptr {
	if pool.owner != nil && !pool.owner.reserve(pagesize) {
		return 0
	}
	page, err := ospage()
	if err != nil {
		if pool.owner != nil {
			pool.owner.unreserve(pagesize)
		}
		errorf("malloc.pool: page allocation: %v", err)
		return 0
	}
	initpage(page, uint32(pool.slabsize), pool.headerpad, pool.capacity)
	pool.npages++
	pool.cpages++
	debugf("malloc.pool: new page %x slab %v (%v created)", page, pool.slabsize, pool.cpages)
	return page
}

//---- local functions

// checkfreelists walk the free list of every indexed page, verifying
// that each node lies inside its page at a slot offset and that list
// length matches the header count. Returns the number of free slots.
func (pool *LinkedPool) checkfreelists() int64 {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	freeslots := int64(0)
	for _, page := range pool.freepages.all() {
		header := headerat(page)
		count := int64(0)
		for slot := header.freelist; slot != 0; {
			off := int64(slot-page) - pool.headerpad
			if off < 0 || off%pool.slabsize != 0 || off >= pool.capacity*pool.slabsize {
				panicerr("free slot %x outside page %x", slot, page)
			}
			count++
			slot = *(*uintptr)(unsafe.Pointer(slot))
		}
		if count != pool.capacity-int64(header.occupied) {
			panicerr("page %x freelist %v, occupied %v", page, count, header.occupied)
		}
		freeslots += count
	}
	return freeslots
}
