// Package malloc replaces the general allocator for small objects with
// segregated-fit pools carved out of page-aligned memory, with a limited
// scope:
//
//   - Objects of up to 128 bytes are served from pools; larger requests
//     fall back to the system allocator.
//   - Every pool page is obtained on a page boundary, carries a single
//     header at offset zero and is sliced into equal sized slots. The
//     owning page of any allocation is recovered by masking the pointer
//     with the page mask, so Free is constant time with no per-object
//     book-keeping word.
//   - Free slots of a page are threaded into an intrusive free list, the
//     link occupying the first pointer-width of each free slot.
//   - A page whose slots are all free is returned to the OS immediately.
//   - Slabs allocated by this package are always 64-bit aligned; slabs
//     that are multiples of 16 are 16-byte aligned.
//
// LinkedPool manages the pages of one slab size. GlobalPools fans sizes
// between 8 and 128 bytes, in steps of 8, across sixteen LinkedPools.
// Alloc, Allocnothrow and Free are the process-wide entry points routing
// through a lazily initialized GlobalPools singleton.
package malloc

// TODO: pages are released to the OS one at a time via Free. Release at
// pool granularity for callers that drop a whole data-structure at once.
