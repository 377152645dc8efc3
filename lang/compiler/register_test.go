package compiler

import "testing"

func TestRegisterAllocatorFirstFit(t *testing.T) {
	r := newRegisterAllocator()

	a, ok := r.alloc()
	if !ok || a != 0 {
		t.Fatalf("first alloc = %d, %v; want 0, true", a, ok)
	}
	b, ok := r.alloc()
	if !ok || b != 1 {
		t.Fatalf("second alloc = %d, %v; want 1, true", b, ok)
	}

	r.free(a)
	c, ok := r.alloc()
	if !ok || c != 0 {
		t.Fatalf("alloc after free = %d, %v; want 0, true (lowest free wins)", c, ok)
	}
}

func TestRegisterAllocatorDoubleFreeIsNoop(t *testing.T) {
	r := newRegisterAllocator()
	a, _ := r.alloc()
	r.free(a)
	r.free(a) // must not panic or corrupt next

	b, ok := r.alloc()
	if !ok || b != a {
		t.Fatalf("alloc after double free = %d, %v; want %d, true", b, ok, a)
	}
}

func TestRegisterAllocatorExhaustion(t *testing.T) {
	r := &registerAllocator{used: make([]bool, 2)}
	if _, ok := r.alloc(); !ok {
		t.Fatal("alloc 1 failed unexpectedly")
	}
	if _, ok := r.alloc(); !ok {
		t.Fatal("alloc 2 failed unexpectedly")
	}
	if _, ok := r.alloc(); ok {
		t.Fatal("alloc 3 should have failed, space exhausted")
	}
}
