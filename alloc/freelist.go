package alloc

import "github.com/joshuapare/heapkit/internal/format"

// insert pushes free block bp onto the head of its size class list.
// O(1); the most recently freed block is found first.
func (a *SegregatedAllocator) insert(bp uint32) {
	c := format.ClassOf(format.BlockSize(a.data, bp))
	head := a.heads[c]

	format.SetPrevLink(a.data, bp, format.Nil)
	format.SetNextLink(a.data, bp, head)
	if head != format.Nil {
		format.SetPrevLink(a.data, head, bp)
	}
	a.heads[c] = bp
}

// remove unlinks free block bp from its size class list and clears its links.
// The class is derived from the block's current size, so callers must remove
// a block before changing its size.
func (a *SegregatedAllocator) remove(bp uint32) {
	c := format.ClassOf(format.BlockSize(a.data, bp))
	next := format.NextLink(a.data, bp)
	prev := format.PrevLink(a.data, bp)

	switch {
	case next == format.Nil && prev == format.Nil:
		// Sole member
		a.heads[c] = format.Nil
	case prev == format.Nil:
		// Head of a longer list
		format.SetPrevLink(a.data, next, format.Nil)
		a.heads[c] = next
	case next == format.Nil:
		// Tail
		format.SetNextLink(a.data, prev, format.Nil)
	default:
		// Interior
		format.SetNextLink(a.data, prev, next)
		format.SetPrevLink(a.data, next, prev)
	}

	format.SetNextLink(a.data, bp, format.Nil)
	format.SetPrevLink(a.data, bp, format.Nil)
}

// findFit returns the first free block of at least asize bytes, scanning
// size classes upward from the smallest that could hold it, or format.Nil.
func (a *SegregatedAllocator) findFit(asize uint32) uint32 {
	for c := format.ClassOf(asize); c < format.NumClasses; c++ {
		for bp := a.heads[c]; bp != format.Nil; bp = format.NextLink(a.data, bp) {
			if format.BlockSize(a.data, bp) >= asize {
				return bp
			}
		}
	}
	return format.Nil
}

// place allocates asize bytes at the front of free block bp. The tail is split
// off when it can stand as a free block, otherwise it is absorbed.
func (a *SegregatedAllocator) place(bp uint32, asize uint32) {
	csize := format.BlockSize(a.data, bp)
	a.remove(bp)

	if rem := csize - asize; rem >= format.MinFreeBlockSize {
		format.SetTags(a.data, bp, asize, true)
		tail := bp + asize
		format.SetTags(a.data, tail, rem, false)
		a.insert(a.coalesce(tail))
		a.stats.SplitCount++
		a.stats.BytesAllocated += int64(asize)
		return
	}

	format.SetTags(a.data, bp, csize, true)
	a.stats.BytesAllocated += int64(csize)
}

// coalesce merges free block bp with its free physical neighbours and returns
// the merged block. Absorbed neighbours are removed from their lists; the
// result is not listed, because its class depends on the final size.
func (a *SegregatedAllocator) coalesce(bp uint32) uint32 {
	prevAlloc := format.PrevAlloc(a.data, bp)
	next := format.NextBlock(a.data, bp)
	nextAlloc := format.BlockAlloc(a.data, next)
	size := format.BlockSize(a.data, bp)

	switch {
	case prevAlloc && nextAlloc:
		a.stats.CoalesceNone++
		return bp

	case prevAlloc && !nextAlloc:
		a.stats.CoalesceNext++
		a.remove(next)
		size += format.BlockSize(a.data, next)

	case !prevAlloc && nextAlloc:
		a.stats.CoalescePrev++
		prev := format.PrevBlock(a.data, bp)
		a.remove(prev)
		size += format.BlockSize(a.data, prev)
		bp = prev

	default:
		a.stats.CoalesceBoth++
		prev := format.PrevBlock(a.data, bp)
		a.remove(next)
		a.remove(prev)
		size += format.BlockSize(a.data, prev) + format.BlockSize(a.data, next)
		bp = prev
	}

	format.SetTags(a.data, bp, size, false)
	return bp
}
