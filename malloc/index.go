package malloc

import "sort"

import "github.com/emirpasic/gods/trees/redblacktree"

// pageindex orders the pages of a pool that still have at least one free
// slot. Ordering by base address keeps first() deterministic, nothing
// else observes the order. Two container variants exist, selectable with
// the "index" setting: "rbt" bounds insert/remove/first by O(log n);
// "list" locates a page by binary search but shifts the slice on insert
// and remove, which is O(n). The cached free page keeps the common path
// away from the index.
type pageindex interface {
	insert(page uintptr)
	remove(page uintptr)
	first() uintptr // lowest page address, 0 when empty
	all() []uintptr
	len() int
}

func newpageindex(variant string) pageindex {
	switch variant {
	case "rbt":
		return newrbtindex()
	case "list":
		return &listindex{pages: make([]uintptr, 0, 8)}
	}
	panicerr("unknown pageindex %q", variant)
	return nil
}

// rbtindex red-black tree of page addresses.
type rbtindex struct {
	tree *redblacktree.Tree
}

func newrbtindex() *rbtindex {
	comparator := func(a, b interface{}) int {
		x, y := a.(uintptr), b.(uintptr)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return &rbtindex{tree: redblacktree.NewWith(comparator)}
}

func (index *rbtindex) insert(page uintptr) {
	index.tree.Put(page, nil)
}

func (index *rbtindex) remove(page uintptr) {
	index.tree.Remove(page)
}

func (index *rbtindex) first() uintptr {
	if index.tree.Empty() {
		return 0
	}
	return index.tree.Left().Key.(uintptr)
}

func (index *rbtindex) all() []uintptr {
	pages := make([]uintptr, 0, index.tree.Size())
	for _, key := range index.tree.Keys() {
		pages = append(pages, key.(uintptr))
	}
	return pages
}

func (index *rbtindex) len() int {
	return index.tree.Size()
}

// listindex sorted slice of page addresses.
type listindex struct {
	pages []uintptr
}

func (index *listindex) insert(page uintptr) {
	i := sort.Search(len(index.pages), func(j int) bool {
		return index.pages[j] >= page
	})
	if i < len(index.pages) && index.pages[i] == page {
		return
	}
	index.pages = append(index.pages, 0)
	copy(index.pages[i+1:], index.pages[i:])
	index.pages[i] = page
}

func (index *listindex) remove(page uintptr) {
	i := sort.Search(len(index.pages), func(j int) bool {
		return index.pages[j] >= page
	})
	if i == len(index.pages) || index.pages[i] != page {
		return
	}
	copy(index.pages[i:], index.pages[i+1:])
	index.pages = index.pages[:len(index.pages)-1]
}

func (index *listindex) first() uintptr {
	if len(index.pages) == 0 {
		return 0
	}
	return index.pages[0]
}

func (index *listindex) all() []uintptr {
	pages := make([]uintptr, len(index.pages))
	copy(pages, index.pages)
	return pages
}

func (index *listindex) len() int {
	return len(index.pages)
}
