// Package format houses the low-level boundary-tag block format used by the
// heap allocator. Everything here is allocation-free and operates directly on
// the heap's byte slice, so higher-level packages can reason in block handles
// (payload offsets) rather than raw byte positions.
package format

const (
	// WordSize is the size of a header or footer word in bytes.
	WordSize = 4

	// DoubleSize is the size of a double word. Header plus footer overhead of
	// every block is exactly one double word.
	DoubleSize = 8

	// Alignment is the required alignment of every payload offset and block size.
	Alignment = 8

	// AlignmentMask is used by Align8.
	AlignmentMask = Alignment - 1

	// LinkSize is the size of one free-list link stored inside a free block.
	LinkSize = 4

	// MinBlockSize is the smallest block the allocator hands out:
	// header (4) + 8 bytes payload + footer (4).
	MinBlockSize = 2 * DoubleSize

	// MinFreeBlockSize is the smallest remainder worth splitting off into its
	// own free block. It is also the size of size class 0.
	MinFreeBlockSize = 3 * DoubleSize

	// ChunkSize is the default heap extension in bytes.
	ChunkSize = 1 << 12

	// PrefixSize is the size of the heap prefix written at initialization:
	// padding word, prologue header, prologue footer, epilogue header.
	PrefixSize = 4 * WordSize

	// PrologueSize is the size of the permanently allocated prologue block.
	PrologueSize = DoubleSize

	// NumClasses is the number of segregated size classes.
	NumClasses = 17

	// allocBit marks a block as allocated in its header and footer.
	allocBit = 0x1

	// sizeMask strips the flag bits from a tag word.
	sizeMask = ^uint32(AlignmentMask)
)

// Nil is the link value terminating a free list. Offset 0 is the prefix
// padding word and can never be a payload offset.
const Nil uint32 = 0
