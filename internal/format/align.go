package format

// Alignment utilities for the block format.
// Every block size and payload offset is a multiple of eight bytes.

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// Align8U32 returns n aligned up to the next 8-byte boundary.
// uint32 version for use on block sizes read from tag words.
func Align8U32(n uint32) uint32 {
	return (n + AlignmentMask) & ^uint32(AlignmentMask)
}

// IsAligned reports whether n is a multiple of Alignment.
func IsAligned(n int) bool {
	return n&AlignmentMask == 0
}

// AdjustedSize returns the block size needed to satisfy a payload request of
// size bytes: header and footer overhead added, rounded up to Alignment, and
// never below MinBlockSize.
//
// Example:
//
//	AdjustedSize(1)   = 16
//	AdjustedSize(8)   = 16
//	AdjustedSize(9)   = 24
//	AdjustedSize(100) = 112
func AdjustedSize(size int) int {
	if size <= DoubleSize {
		return MinBlockSize
	}
	return DoubleSize * ((size + DoubleSize + (DoubleSize - 1)) / DoubleSize)
}
