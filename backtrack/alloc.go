package backtrack

import "sync"

// Allocator supplies the integer buffers the matcher needs beyond its
// pooled frames: the working capture vector of each Exec and the capture
// snapshots taken by subroutine calls. Every buffer obtained from Alloc is
// passed back to Free exactly once, on every exit path.
//
// Alloc returns a slice of length at least n, or nil when no memory is
// available; Exec then fails with ErrNoMemory.
type Allocator interface {
	Alloc(n int) []int
	Free(buf []int)
}

// FrameAllocator is an Allocator that also accounts for the matcher's
// backtracking frames. Exec calls AllocFrame on entry to every matcher call
// and FreeFrame when that call returns; when AllocFrame reports false the
// match fails with ErrNoMemory. The frames themselves stay in the matcher's
// typed arena.
type FrameAllocator interface {
	Allocator
	AllocFrame() bool
	FreeFrame()
}

// PoolAllocator recycles buffers through a sync.Pool. The zero value is
// ready to use and safe for concurrent use.
type PoolAllocator struct {
	pool sync.Pool
}

// Alloc returns a buffer of length n.
func (a *PoolAllocator) Alloc(n int) []int {
	if v := a.pool.Get(); v != nil {
		buf := *v.(*[]int)
		if cap(buf) >= n {
			return buf[:n]
		}
	}
	return make([]int, n)
}

// Free returns buf to the pool.
func (a *PoolAllocator) Free(buf []int) {
	if cap(buf) == 0 {
		return
	}
	buf = buf[:0]
	a.pool.Put(&buf)
}

var defaultAllocator = &PoolAllocator{}
