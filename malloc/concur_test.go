package malloc

import "fmt"
import "math/rand"
import "sync"
import "sync/atomic"
import "testing"
import "unsafe"

type testalloc struct {
	n    byte
	size int64
	ptr  unsafe.Pointer
}

var ccallocated, ccfreed int64

func TestConcur(t *testing.T) {
	var awg, fwg sync.WaitGroup

	nroutines, repeat := 8, 10000

	chans := make([]chan testalloc, 0, nroutines)
	for n := 0; n < nroutines; n++ {
		chans = append(chans, make(chan testalloc, 1000))
	}

	g := NewGlobalPools(nil)
	awg.Add(nroutines)
	fwg.Add(nroutines)
	for n := 0; n < nroutines; n++ {
		go testallocator(g, byte(n), repeat, chans, &awg)
		go testfree(g, chans[n], &fwg)
	}

	awg.Wait()
	t.Logf("allocations are done\n")

	for _, ch := range chans {
		close(ch)
	}

	fwg.Wait()

	t.Logf("ccallocated:%v ccfreed:%v\n", ccallocated, ccfreed)
	if x, y := atomic.LoadInt64(&ccallocated), atomic.LoadInt64(&ccfreed); x != y {
		t.Errorf("expected %v, got %v", x, y)
	}
	if _, heap, alloc, _ := g.Info(); alloc != 0 {
		t.Errorf("expected no outstanding slabs, got %v", alloc)
	} else if heap != 0 {
		t.Errorf("expected no outstanding pages, got %v", heap)
	}
}

func testallocator(
	g *GlobalPools, n byte, repeat int,
	chans []chan testalloc, wg *sync.WaitGroup) {

	defer wg.Done()

	slabs := g.Slabs()
	for i := 0; i < repeat; i++ {
		size := slabs[rand.Intn(len(slabs))]
		ptr := g.Alloc(size, Alignment)

		if x := g.Slabsize(ptr); x != size {
			panic(fmt.Errorf("expected %v, got %v", size, x))
		}

		block := unsafe.Slice((*byte)(ptr), size)
		for j := range block {
			block[j] = n
		}

		chans[rand.Intn(len(chans))] <- testalloc{n: n, size: size, ptr: ptr}
		atomic.AddInt64(&ccallocated, size)
	}
}

func testfree(g *GlobalPools, ch chan testalloc, wg *sync.WaitGroup) {
	defer wg.Done()

	for msg := range ch {
		block := unsafe.Slice((*byte)(msg.ptr), msg.size)
		for _, b := range block {
			if b != msg.n {
				panic(fmt.Errorf("pattern %v overwritten with %v", msg.n, b))
			}
		}
		g.Free(msg.ptr)
		atomic.AddInt64(&ccfreed, msg.size)
	}
}
