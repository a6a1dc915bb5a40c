package malloc

import "fmt"
import "errors"

// ErrorOutofmemory requested page could not be obtained from the OS, or
// obtaining it would exceed the configured capacity.
var ErrorOutofmemory = errors.New("malloc.outofmemory")

// Suitableslab round size up to the nearest slab size, sizes less than
// Alignment are served from the smallest slab.
func Suitableslab(size int64) int64 {
	if size <= Alignment {
		return Alignment
	}
	return (size + Alignment - 1) &^ (Alignment - 1)
}

func ispowerof2(x int64) bool {
	return x > 0 && (x&(x-1)) == 0
}

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
