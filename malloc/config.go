package malloc

import "os"

import s "github.com/bnclabs/gosettings"
import sigar "github.com/cloudfoundry/gosigar"

// Alignment slab sizes are multiples of Alignment. It equals the size of
// a free-list link, hence also the smallest slab size.
const Alignment = int64(8)

// Maxslab largest slab size served from pools, requests bigger than
// Maxslab go to the system allocator.
const Maxslab = int64(128)

// Maxalign largest alignment a pool can satisfy. Requests with stricter
// alignment go to the system allocator.
const Maxalign = int64(16)

// Nslabs number of slab classes managed by GlobalPools.
const Nslabs = int(Maxslab / Alignment)

var pagesize = int64(os.Getpagesize())
var pagemask = uintptr(pagesize - 1)

// Defaultsettings for gopools, along with its default values.
//
// "index" (string, default: "rbt")
//		Container indexing pages that still have a free slot,
//		can be "rbt" or "list".
//
// "capacity" (int64, default: free RAM)
//		Maximum number of bytes obtainable from the OS across all
//		pools of a GlobalPools instance.
func Defaultsettings() s.Settings {
	_, _, free := getsysmem()
	return s.Settings{
		"index":    "rbt",
		"capacity": int64(free),
	}
}

func getsysmem() (total, used, free uint64) {
	mem := sigar.Mem{}
	mem.Get()
	return mem.Total, mem.Used, mem.Free
}

func validatesettings(setts s.Settings) {
	switch index := setts.String("index"); index {
	case "rbt", "list":
	default:
		panicerr("invalid setting index:%q", index)
	}
	if capacity := setts.Int64("capacity"); capacity < pagesize {
		panicerr("invalid setting capacity:%v", capacity)
	}
}
