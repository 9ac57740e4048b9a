package alloc

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/internal/format"
)

// maxHeapSize bounds the heap so every offset and block size fits a tag word.
const maxHeapSize int64 = 1<<32 - format.Alignment

// SegregatedAllocator is a boundary-tag allocator with segregated free lists.
// - 17 LIFO size classes, first fit scanning upward
// - Immediate coalescing on free, split on place
// - Heap grows through heap.Memory, never shrinks.
type SegregatedAllocator struct {
	mem  heap.Memory
	data []byte // mem.Bytes(), refreshed after every Sbrk

	// Free-list heads, one per size class. format.Nil marks an empty class.
	heads [format.NumClasses]uint32

	// Payload offset of the prologue block; the heap walk starts here.
	start uint32

	chunk int
	log   *zap.Logger
	stats Stats

	// Test hook: called after every successful heap extension (nil in production)
	onGrow func(int)
}

var _ Allocator = (*SegregatedAllocator)(nil)

// New initializes an allocator on an empty Memory.
//
// Parameters:
//   - mem: The heap-growth primitive. The allocator owns it from now on.
//   - cfg: Allocator configuration (use nil for DefaultConfig)
func New(mem heap.Memory, cfg *Config) (*SegregatedAllocator, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	if int64(mem.Limit()) > maxHeapSize {
		return nil, errors.Wrapf(ErrInit, "memory limit %d exceeds %d", mem.Limit(), maxHeapSize)
	}

	a := &SegregatedAllocator{
		mem:   mem,
		chunk: cfg.chunkSize(),
		log:   cfg.logger(),
	}

	base, err := mem.Sbrk(format.PrefixSize)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrap(ErrInit, "heap prefix"), err)
	}
	if !format.IsAligned(base) {
		return nil, errors.Wrapf(ErrInit, "heap base %d is not 8-byte aligned", base)
	}
	a.data = mem.Bytes()

	for i := range a.heads {
		a.heads[i] = format.Nil
	}

	// Padding, prologue header, prologue footer, epilogue header.
	prologue := format.Pack(format.PrologueSize, true)
	format.PutU32(a.data, base, 0)
	format.PutU32(a.data, base+format.WordSize, prologue)
	format.PutU32(a.data, base+2*format.WordSize, prologue)
	format.PutU32(a.data, base+3*format.WordSize, format.Pack(0, true))
	a.start = uint32(base + 2*format.WordSize)

	bp, err := a.extendHeap(a.chunk / format.WordSize)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrap(ErrInit, "first chunk"), err)
	}
	a.insert(bp)

	a.log.Debug("allocator initialized",
		zap.Int("chunk", a.chunk),
		zap.Int("heap", len(a.data)),
		zap.Int("limit", mem.Limit()))
	return a, nil
}

// Close releases the heap. The allocator and every Ptr it returned become invalid.
func (a *SegregatedAllocator) Close() error {
	a.data = nil
	for i := range a.heads {
		a.heads[i] = format.Nil
	}
	return a.mem.Close()
}

// Malloc allocates a block whose payload holds at least size bytes.
func (a *SegregatedAllocator) Malloc(size int) (Ptr, error) {
	a.stats.AllocCalls++

	// Ignore spurious request
	if size == 0 {
		return Nil, nil
	}
	asize, err := a.adjust(size)
	if err != nil {
		return Nil, err
	}

	bp, err := a.allocBlock(asize)
	if err != nil {
		return Nil, err
	}
	return Ptr(bp), nil
}

// Free returns a block to its size class after merging it with free neighbours.
func (a *SegregatedAllocator) Free(p Ptr) {
	if p == Nil {
		return
	}
	a.stats.FreeCalls++
	a.release(uint32(p))
}

// Realloc resizes the block p.
//
// Growing a block that ends at the epilogue extends the heap under it and keeps
// its address. Growing any other block moves it. Shrinking keeps the address
// and splits off the tail when it can form a free block of its own.
//
// On exhaustion, p is left untouched and (Nil, ErrOutOfMemory) is returned.
func (a *SegregatedAllocator) Realloc(p Ptr, size int) (Ptr, error) {
	a.stats.ReallocCalls++

	if p == Nil {
		return a.Malloc(size)
	}
	if size == 0 {
		a.Free(p)
		return Nil, nil
	}
	asize, err := a.adjust(size)
	if err != nil {
		return Nil, err
	}

	bp := uint32(p)
	oldsize := format.BlockSize(a.data, bp)

	if asize > oldsize {
		next := format.NextBlock(a.data, bp)
		if format.BlockSize(a.data, next) == 0 {
			// Last block: grow the heap under it.
			rest := asize - oldsize
			if _, err := a.extendHeap(int(rest) / format.WordSize); err != nil {
				return Nil, err
			}
			// The fresh region follows an allocated block and precedes the
			// epilogue, so it was not merged or listed. Absorb it.
			format.SetTags(a.data, bp, oldsize+rest, true)
			a.stats.ReallocInPlace++
			a.stats.BytesAllocated += int64(rest)
			return p, nil
		}

		nbp, err := a.allocBlock(asize)
		if err != nil {
			return Nil, err
		}
		n := int(oldsize) - format.DoubleSize
		copy(a.data[nbp:int(nbp)+n], a.data[bp:int(bp)+n])
		a.release(bp)
		a.stats.ReallocMoved++
		return Ptr(nbp), nil
	}

	if rem := oldsize - asize; rem >= format.MinFreeBlockSize {
		format.SetTags(a.data, bp, asize, true)
		tail := bp + asize
		format.SetTags(a.data, tail, rem, false)
		a.insert(a.coalesce(tail))
		a.stats.SplitCount++
		a.stats.BytesFreed += int64(rem)
	}
	return p, nil
}

// Bytes returns the payload of block p. With a relocating heap.Memory the
// slice is only valid until the next call that may grow the heap.
func (a *SegregatedAllocator) Bytes(p Ptr) []byte {
	if p == Nil {
		return nil
	}
	bp := int(p)
	end := bp + int(format.BlockSize(a.data, uint32(p))) - format.DoubleSize
	return a.data[bp:end:end]
}

// UsableSize returns the number of payload bytes of block p.
func (a *SegregatedAllocator) UsableSize(p Ptr) int {
	if p == Nil {
		return 0
	}
	return int(format.BlockSize(a.data, uint32(p))) - format.DoubleSize
}

// HeapSize returns the current heap size in bytes.
func (a *SegregatedAllocator) HeapSize() int {
	return len(a.data)
}

// HeapStart returns the payload offset of the prologue block.
func (a *SegregatedAllocator) HeapStart() Ptr {
	return Ptr(a.start)
}

// ============================================================================
// Internal helpers
// ============================================================================

// adjust converts a request into a block size, rejecting requests the heap
// could never hold without touching it.
func (a *SegregatedAllocator) adjust(size int) (uint32, error) {
	if size < 0 {
		return 0, errors.Wrapf(ErrBadSize, "request %d", size)
	}
	if size > a.mem.Limit() || format.AdjustedSize(size) > a.mem.Limit()-format.PrefixSize {
		a.log.Debug("request exceeds heap limit",
			zap.Int("request", size),
			zap.Int("limit", a.mem.Limit()))
		return 0, errors.Wrapf(ErrOutOfMemory, "request of %d bytes exceeds heap limit %d", size, a.mem.Limit())
	}
	return uint32(format.AdjustedSize(size)), nil
}

// allocBlock finds or makes room for a block of asize bytes and places it.
func (a *SegregatedAllocator) allocBlock(asize uint32) (uint32, error) {
	if bp := a.findFit(asize); bp != format.Nil {
		a.stats.AllocFastPath++
		a.place(bp, asize)
		return bp, nil
	}

	// No fit found. Get more memory and place the block.
	extend := max(int(asize), a.chunk)
	a.log.Debug("no fit, extending heap",
		zap.Uint32("need", asize),
		zap.Int("extend", extend),
		zap.Int("heap", len(a.data)))

	bp, err := a.extendHeap(extend / format.WordSize)
	if err != nil {
		return format.Nil, err
	}
	a.stats.AllocSlowPath++
	a.insert(bp)
	a.place(bp, asize)
	return bp, nil
}

// release clears the allocated bit of bp, merges it and lists the result.
func (a *SegregatedAllocator) release(bp uint32) {
	size := format.BlockSize(a.data, bp)
	a.stats.BytesFreed += int64(size)

	format.SetTags(a.data, bp, size, false)
	format.SetNextLink(a.data, bp, format.Nil)
	format.SetPrevLink(a.data, bp, format.Nil)

	a.insert(a.coalesce(bp))
}
