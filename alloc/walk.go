package alloc

import "github.com/joshuapare/heapkit/internal/format"

// Walk calls fn for every block between the prologue and the epilogue, in
// address order, until fn returns false. The heap must not be modified
// during the walk.
func (a *SegregatedAllocator) Walk(fn func(BlockInfo) bool) {
	end := uint32(len(a.data))
	for bp := format.NextBlock(a.data, a.start); bp < end; {
		tag := format.ReadU32(a.data, format.Header(bp))
		size := format.SizeOf(tag)
		if size == 0 {
			return
		}
		if !fn(BlockInfo{Ptr: Ptr(bp), Size: int(size), Allocated: format.IsAlloc(tag)}) {
			return
		}
		bp += size
	}
}

// Blocks returns every block in address order.
func (a *SegregatedAllocator) Blocks() []BlockInfo {
	var out []BlockInfo
	a.Walk(func(b BlockInfo) bool {
		out = append(out, b)
		return true
	})
	return out
}

// FreeLists returns the contents of every size class in list order.
func (a *SegregatedAllocator) FreeLists() [format.NumClasses][]Ptr {
	var out [format.NumClasses][]Ptr
	limit := len(a.data) / format.MinBlockSize
	for c := range a.heads {
		for bp := a.heads[c]; bp != format.Nil && len(out[c]) <= limit; bp = format.NextLink(a.data, bp) {
			out[c] = append(out[c], Ptr(bp))
		}
	}
	return out
}

// IsAllocated reports the allocated flag of block p.
func (a *SegregatedAllocator) IsAllocated(p Ptr) bool {
	return format.BlockAlloc(a.data, uint32(p))
}

// BlockSize returns the block size of p including header and footer.
func (a *SegregatedAllocator) BlockSize(p Ptr) int {
	return int(format.BlockSize(a.data, uint32(p)))
}
