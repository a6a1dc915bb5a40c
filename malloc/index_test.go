package malloc

import "reflect"
import "testing"

func TestPageindex(t *testing.T) {
	for _, variant := range []string{"rbt", "list"} {
		index := newpageindex(variant)
		for _, page := range []uintptr{0x3000, 0x1000, 0x2000} {
			index.insert(page)
		}
		if x := index.len(); x != 3 {
			t.Errorf("%v: expected %v, got %v", variant, 3, x)
		} else if y := index.first(); y != 0x1000 {
			t.Errorf("%v: expected %x, got %x", variant, 0x1000, y)
		}
		ref := []uintptr{0x1000, 0x2000, 0x3000}
		if pages := index.all(); !reflect.DeepEqual(ref, pages) {
			t.Errorf("%v: expected %v, got %v", variant, ref, pages)
		}

		index.insert(0x2000) // duplicate
		if x := index.len(); x != 3 {
			t.Errorf("%v: expected %v, got %v", variant, 3, x)
		}

		index.remove(0x1000)
		if y := index.first(); y != 0x2000 {
			t.Errorf("%v: expected %x, got %x", variant, 0x2000, y)
		}
		index.remove(0x7000) // missing
		if x := index.len(); x != 2 {
			t.Errorf("%v: expected %v, got %v", variant, 2, x)
		}

		index.remove(0x2000)
		index.remove(0x3000)
		if x := index.len(); x != 0 {
			t.Errorf("%v: expected %v, got %v", variant, 0, x)
		} else if y := index.first(); y != 0 {
			t.Errorf("%v: expected %x, got %x", variant, 0, y)
		}
	}

	// panic case
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Errorf("expected panic")
			}
		}()
		newpageindex("avl")
	}()
}
