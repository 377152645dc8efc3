package compiler

// registerSpace is the size of the fixed 16-bit register file (spec §4.3,
// "a fixed 16-bit register space (64k addresses)").
const registerSpace = 1 << 16

// registerAllocator is a first-fit free-bitmap allocator over the register
// space. Allocation always returns the lowest free index; freeing an
// already-free index is a no-op (spec §4.3 register allocation contract).
type registerAllocator struct {
	used []bool // used[i] true if register i is currently allocated
	next int    // low-water mark: no register below next is free
}

func newRegisterAllocator() *registerAllocator {
	return &registerAllocator{used: make([]bool, registerSpace)}
}

// alloc returns the lowest free register index, or ok=false if the register
// space is exhausted (an internal compiler error at the call site).
func (r *registerAllocator) alloc() (reg uint16, ok bool) {
	for i := r.next; i < len(r.used); i++ {
		if !r.used[i] {
			r.used[i] = true
			r.next = i + 1
			return uint16(i), true
		}
	}
	return 0, false
}

// free marks reg as available again. Double-free is a no-op.
func (r *registerAllocator) free(reg uint16) {
	if !r.used[reg] {
		return
	}
	r.used[reg] = false
	if int(reg) < r.next {
		r.next = int(reg)
	}
}
