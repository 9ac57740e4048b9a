package alloc

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/joshuapare/heapkit/internal/format"
)

// extendHeap grows the heap by words words (rounded up to an even count) and
// returns the new free block, merged with a trailing free block if there was
// one. The caller lists the result unless it consumes it immediately.
func (a *SegregatedAllocator) extendHeap(words int) (uint32, error) {
	// Allocate an even number of words to maintain alignment
	if words%2 != 0 {
		words++
	}
	size := words * format.WordSize

	old, err := a.mem.Sbrk(size)
	if err != nil {
		a.log.Debug("heap extension failed",
			zap.Int("bytes", size),
			zap.Int("heap", len(a.data)),
			zap.Error(err))
		return format.Nil, errors.WithSecondaryError(
			errors.Wrapf(ErrOutOfMemory, "extend heap by %d bytes", size), err)
	}
	a.data = a.mem.Bytes()
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(size)

	// The old epilogue header becomes the new block's header.
	bp := uint32(old)
	format.SetTags(a.data, bp, uint32(size), false)
	format.PutU32(a.data, format.Header(bp+uint32(size)), format.Pack(0, true))

	if logAlloc {
		a.log.Debug("heap extended",
			zap.Int("bytes", size),
			zap.Uint32("block", bp),
			zap.Int("heap", len(a.data)))
	}

	// Call test hook if set
	if a.onGrow != nil {
		a.onGrow(size)
	}

	return a.coalesce(bp), nil
}
