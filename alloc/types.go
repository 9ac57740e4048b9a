package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is a block handle: the heap offset of a block's payload.
type Ptr uint32

// Nil is the null block handle.
const Nil Ptr = Ptr(format.Nil)

func (p Ptr) String() string {
	if p == Nil {
		return "nil"
	}
	return fmt.Sprintf("0x%X", uint32(p))
}

// Allocator defines the client-facing allocation interface.
//
// Implementations:
//   - SegregatedAllocator: boundary tags with segregated first-fit free lists
type Allocator interface {
	// Malloc allocates a block with at least size payload bytes.
	// A zero size returns Nil and no error.
	Malloc(size int) (Ptr, error)

	// Free returns a block obtained from Malloc or Realloc. Freeing Nil is a no-op.
	// Freeing anything else is undefined behaviour.
	Free(p Ptr)

	// Realloc resizes a block, preserving its payload up to the smaller size.
	// Realloc(Nil, n) is Malloc(n); Realloc(p, 0) frees p and returns Nil.
	Realloc(p Ptr, size int) (Ptr, error)

	// Bytes returns the payload of a live block.
	Bytes(p Ptr) []byte

	// HeapSize returns the current size of the heap region in bytes.
	HeapSize() int
}

// BlockInfo describes one block found by a heap walk.
type BlockInfo struct {
	Ptr       Ptr  // Payload offset
	Size      int  // Block size including header and footer
	Allocated bool // Allocated flag from the header
}

// PayloadSize returns the number of payload bytes of the block.
func (b BlockInfo) PayloadSize() int {
	return b.Size - format.DoubleSize
}

// End returns the offset just past the block's footer.
func (b BlockInfo) End() int {
	return int(b.Ptr) + b.Size - format.WordSize
}
