package format

// Block tag layout (little-endian, one word):
//
//	Bits   Description
//	31..3  Block size in bytes (multiple of 8, includes header and footer)
//	0      Allocated flag
//
// Block layout, addressed by bp (the payload offset):
//
//	bp-4          header   size|alloc
//	bp            payload  (free: next link)
//	bp+4                   (free: prev link)
//	bp+size-8     footer   size|alloc
//	bp+size-4     header of the next block

// Pack combines a block size and an allocated flag into a tag word.
func Pack(size uint32, alloc bool) uint32 {
	if alloc {
		return size | allocBit
	}
	return size
}

// SizeOf extracts the block size from a tag word.
func SizeOf(tag uint32) uint32 {
	return tag & sizeMask
}

// IsAlloc extracts the allocated flag from a tag word.
func IsAlloc(tag uint32) bool {
	return tag&allocBit != 0
}

// Header returns the byte offset of the header of block bp.
func Header(bp uint32) int {
	return int(bp) - WordSize
}

// Footer returns the byte offset of the footer of block bp.
func Footer(b []byte, bp uint32) int {
	return int(bp) + int(BlockSize(b, bp)) - DoubleSize
}

// BlockSize returns the size recorded in the header of block bp.
func BlockSize(b []byte, bp uint32) uint32 {
	return SizeOf(ReadU32(b, Header(bp)))
}

// BlockAlloc returns the allocated flag recorded in the header of block bp.
func BlockAlloc(b []byte, bp uint32) bool {
	return IsAlloc(ReadU32(b, Header(bp)))
}

// SetTags writes identical header and footer tags for block bp.
// The footer position is derived from size, not from the current header.
func SetTags(b []byte, bp uint32, size uint32, alloc bool) {
	tag := Pack(size, alloc)
	PutU32(b, Header(bp), tag)
	PutU32(b, int(bp)+int(size)-DoubleSize, tag)
}

// NextBlock returns the payload offset of the block physically after bp.
func NextBlock(b []byte, bp uint32) uint32 {
	return bp + BlockSize(b, bp)
}

// PrevBlock returns the payload offset of the block physically before bp,
// found through the previous block's footer.
func PrevBlock(b []byte, bp uint32) uint32 {
	return bp - SizeOf(ReadU32(b, int(bp)-DoubleSize))
}

// PrevAlloc reports whether the block physically before bp is allocated.
func PrevAlloc(b []byte, bp uint32) bool {
	return IsAlloc(ReadU32(b, int(bp)-DoubleSize))
}

// NextLink reads the free-list successor stored in free block bp.
func NextLink(b []byte, bp uint32) uint32 {
	return ReadU32(b, int(bp))
}

// PrevLink reads the free-list predecessor stored in free block bp.
func PrevLink(b []byte, bp uint32) uint32 {
	return ReadU32(b, int(bp)+LinkSize)
}

// SetNextLink stores the free-list successor of free block bp.
func SetNextLink(b []byte, bp, next uint32) {
	PutU32(b, int(bp), next)
}

// SetPrevLink stores the free-list predecessor of free block bp.
func SetPrevLink(b []byte, bp, prev uint32) {
	PutU32(b, int(bp)+LinkSize, prev)
}

// CheckBounds verifies that block bp, including its footer, lies inside b.
func CheckBounds(b []byte, bp uint32) error {
	if int(bp) < PrefixSize || int(bp) > len(b) {
		return ErrTruncated
	}
	if int(bp)+int(BlockSize(b, bp)) > len(b)+WordSize {
		return ErrTruncated
	}
	return nil
}
