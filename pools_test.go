package efr

import (
	"testing"
)

func TestFloatSlicePool_ReturnsZeroedSlices(t *testing.T) {
	pool := &floatSlicePool{}
	v := pool.alloc(3)
	v[0], v[1], v[2] = 1, 2, 3
	pool.free(v)

	w := pool.alloc(4)
	if len(w) != 4 {
		t.Fatalf("expected length 4, got %d", len(w))
	}
	for i, x := range w {
		if x != 0 {
			t.Errorf("w[%d] = %v, expected 0", i, x)
		}
	}
}

func TestFloatSlicePool_Nil(t *testing.T) {
	var pool *floatSlicePool
	v := pool.alloc(2)
	if len(v) != 2 {
		t.Errorf("expected length 2, got %d", len(v))
	}
	pool.free(v)
}

func TestKeyIntMapPool_ReturnsEmptyMaps(t *testing.T) {
	pool := &keyIntMapPool{}
	m := pool.alloc()
	m["a"] = 1
	pool.free(m)

	if n := len(pool.alloc()); n != 0 {
		t.Errorf("expected empty map, got %d entries", n)
	}
}

func BenchmarkFloatSlicePoolAllocFree(b *testing.B) {
	pool := &floatSlicePool{}
	for i := 0; i < b.N; i++ {
		v := pool.alloc(10)
		pool.free(v)
	}
}

func BenchmarkKeyIntMapPoolAllocFree(b *testing.B) {
	pool := &keyIntMapPool{}
	for i := 0; i < b.N; i++ {
		v := pool.alloc()
		pool.free(v)
	}
}
