package backtrack

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// countingAllocator counts the buffers handed out and returned. After
// limit successful allocations it reports that memory is exhausted; a
// negative limit never fails.
type countingAllocator struct {
	allocs, frees int
	limit         int
	inner         PoolAllocator
}

func (a *countingAllocator) Alloc(n int) []int {
	if a.limit >= 0 && a.allocs >= a.limit {
		return nil
	}
	a.allocs++
	return a.inner.Alloc(n)
}

func (a *countingAllocator) Free(buf []int) {
	a.frees++
	a.inner.Free(buf)
}

func TestAllocatorBalanced(t *testing.T) {
	const pattern = `\((?:[^()]|(?R))*\)`
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			alloc := &countingAllocator{limit: -1}
			config := DefaultConfig()
			config.Strategy = strategy
			config.Allocator = alloc
			e := New(compileProg(t, pattern, 0), config)

			got, _, err := run(e, "(a(b)c)", 0, Request{})
			if err != nil {
				t.Fatalf("Exec: %v", err)
			}
			if diff := cmp.Diff([]int{0, 7}, got); diff != "" {
				t.Errorf("ovector mismatch (-want +got):\n%s", diff)
			}
			if alloc.allocs < 2 {
				t.Errorf("allocs = %d, want the capture vector and at least one snapshot", alloc.allocs)
			}
			if alloc.allocs != alloc.frees {
				t.Errorf("allocs = %d, frees = %d", alloc.allocs, alloc.frees)
			}

			// Failing searches release everything too.
			if _, _, err := run(e, "((((", 0, Request{}); !errors.Is(err, ErrNoMatch) {
				t.Fatalf("Exec error = %v, want ErrNoMatch", err)
			}
			if alloc.allocs != alloc.frees {
				t.Errorf("after no match: allocs = %d, frees = %d", alloc.allocs, alloc.frees)
			}
		})
	}
}

func TestAllocatorExhausted(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		pattern string
		subject string
	}{
		{name: "capture vector", limit: 0, pattern: `(a)b`, subject: "ab"},
		{name: "subroutine snapshot", limit: 1, pattern: `(a)(?1)`, subject: "aa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := &countingAllocator{limit: tt.limit}
			config := DefaultConfig()
			config.Allocator = alloc
			e := New(compileProg(t, tt.pattern, 0), config)
			if _, _, err := run(e, tt.subject, 0, Request{}); !errors.Is(err, ErrNoMemory) {
				t.Fatalf("Exec error = %v, want ErrNoMemory", err)
			}
			if alloc.allocs != alloc.frees {
				t.Errorf("allocs = %d, frees = %d", alloc.allocs, alloc.frees)
			}
		})
	}
}

// frameCounter also charges frames, failing once frameLimit of them are
// live; a negative frameLimit never fails.
type frameCounter struct {
	countingAllocator
	live, peak int
	frameLimit int
}

func (a *frameCounter) AllocFrame() bool {
	if a.frameLimit >= 0 && a.live >= a.frameLimit {
		return false
	}
	a.live++
	a.peak = max(a.peak, a.live)
	return true
}

func (a *frameCounter) FreeFrame() { a.live-- }

func TestFrameAllocator(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			alloc := &frameCounter{countingAllocator: countingAllocator{limit: -1}, frameLimit: -1}
			config := DefaultConfig()
			config.Strategy = strategy
			config.Allocator = alloc
			e := New(compileProg(t, `(a|b)*c`, 0), config)

			got, _, err := run(e, "ababc", 0, Request{})
			if err != nil {
				t.Fatalf("Exec: %v", err)
			}
			if diff := cmp.Diff([]int{0, 5, 3, 4}, got); diff != "" {
				t.Errorf("ovector mismatch (-want +got):\n%s", diff)
			}
			if alloc.peak < 4 {
				t.Errorf("peak frames = %d, want one per nested call", alloc.peak)
			}
			if alloc.live != 0 {
				t.Errorf("live frames = %d after Exec, want 0", alloc.live)
			}

			alloc.frameLimit = 3
			if _, _, err := run(e, "ababababc", 0, Request{}); !errors.Is(err, ErrNoMemory) {
				t.Fatalf("Exec error = %v, want ErrNoMemory", err)
			}
			if alloc.live != 0 || alloc.allocs != alloc.frees {
				t.Errorf("after exhaustion: live = %d, allocs = %d, frees = %d",
					alloc.live, alloc.allocs, alloc.frees)
			}
		})
	}
}

func TestPoolAllocator(t *testing.T) {
	var a PoolAllocator
	buf := a.Alloc(8)
	if len(buf) != 8 {
		t.Fatalf("len = %d, want 8", len(buf))
	}
	a.Free(buf)
	if got := a.Alloc(4); len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}
	if got := a.Alloc(64); len(got) != 64 {
		t.Errorf("len = %d, want 64", len(got))
	}
	a.Free(nil)
}
