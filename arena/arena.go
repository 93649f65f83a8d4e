// Package arena implements the bump allocator backing the reverse
// cell-graph parent lists (spec.md §4.4/§5 "Memory"). It never frees
// individual allocations; the whole arena is dropped at once after
// propagation completes, which is why Bump exposes no Free — only Reset.
package arena

import "fmt"

// defaultChunkInt32s is the size of one growth chunk, chosen so a chunk is
// 1 MiB: large enough that append-heavy construction rarely crosses a
// chunk boundary, small enough that the last chunk of a run is never a
// large waste.
const defaultChunkInt32s = 1 << 18 // 1 MiB per chunk

// Bump is an append-only arena of int32 tile indices, capped at a fixed
// byte budget. It backs par(T) parent lists: each call to Alloc returns a
// slice that remains valid until Reset, and is never individually freed.
type Bump struct {
	chunkInt32s int
	capInt32s   int
	chunks      [][]int32
	used        int // elements used in the last chunk
	total       int // elements allocated across all chunks
}

// NewBump creates an arena capped at capBytes total, matching spec.md's
// ≤1 GB (or ≤512 MB under the compile-time small-budget flag) arena
// ceiling. capBytes is rounded down to a whole number of int32 elements.
func NewBump(capBytes int) *Bump {
	capInt32s := capBytes / 4
	chunk := defaultChunkInt32s
	if chunk > capInt32s {
		chunk = capInt32s
	}
	if chunk <= 0 {
		chunk = 1
	}
	return &Bump{chunkInt32s: chunk, capInt32s: capInt32s}
}

// Alloc returns a zeroed slice of n int32s drawn from the arena. The
// returned slice must not be appended to by the caller (it would silently
// reallocate outside the arena's accounting) — callers index into it or
// copy out of it, never append.
func (b *Bump) Alloc(n int) ([]int32, error) {
	if n < 0 {
		panic("arena: negative allocation size")
	}
	if n == 0 {
		return nil, nil
	}
	if b.total+n > b.capInt32s {
		return nil, fmt.Errorf("arena: requested %d int32s, only %d of %d remain", n, b.capInt32s-b.total, b.capInt32s)
	}
	if len(b.chunks) == 0 || b.used+n > len(b.chunks[len(b.chunks)-1]) {
		size := b.chunkInt32s
		if size < n {
			size = n
		}
		b.chunks = append(b.chunks, make([]int32, size))
		b.used = 0
	}
	cur := b.chunks[len(b.chunks)-1]
	s := cur[b.used : b.used+n : b.used+n]
	b.used += n
	b.total += n
	return s, nil
}

// Used reports the number of int32 elements allocated so far.
func (b *Bump) Used() int { return b.total }

// Cap reports the arena's total int32 capacity.
func (b *Bump) Cap() int { return b.capInt32s }

// Reset drops every chunk, releasing the arena as a unit. Any slice
// previously returned by Alloc must not be used after Reset.
func (b *Bump) Reset() {
	b.chunks = nil
	b.used = 0
	b.total = 0
}
